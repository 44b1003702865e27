package parallel_test

import (
	"errors"
	"fmt"

	"github.com/exascience/amorphous/parallel"
)

func ExampleDo() {
	var fib func(int) (int, error)

	fib = func(n int) (result int, err error) {
		if n < 0 {
			err = errors.New("invalid argument")
		} else if n < 2 {
			result = n
		} else {
			var n1, n2 int
			n1, err = fib(n - 1)
			if err != nil {
				return
			}
			n2, err = fib(n - 2)
			result = n1 + n2
		}
		return
	}

	type intErr struct {
		n   int
		err error
	}

	var parallelFib func(int) intErr

	parallelFib = func(n int) (result intErr) {
		if n < 0 {
			result.err = errors.New("invalid argument")
		} else if n < 20 {
			result.n, result.err = fib(n)
		} else {
			var n1, n2 intErr
			parallel.Do(
				func() error { n1 = parallelFib(n - 1); return nil },
				func() error { n2 = parallelFib(n - 2); return nil },
			)
			result.n = n1.n + n2.n
			if n1.err != nil {
				result.err = n1.err
			} else {
				result.err = n2.err
			}
		}
		return
	}

	if result := parallelFib(-1); result.err != nil {
		fmt.Println(result.err)
	} else {
		fmt.Println(result.n)
	}

	// Output:
	// invalid argument
}

func ExampleRange() {
	sum := make([]int, 4)
	err := parallel.Range(0, 16, 4, func(low, high int) error {
		for i := low; i < high; i++ {
			sum[low/4] += i
		}
		return nil
	})
	if err != nil {
		fmt.Println(err)
		return
	}
	fmt.Println(sum)

	// Output:
	// [6 22 38 54]
}
