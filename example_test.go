package gojacallback_test

import (
	"context"
	"fmt"

	gojacallback "github.com/joeycumines/goja-callback"
)

func Example() {
	rt, err := gojacallback.NewRuntime(context.Background())
	if err != nil {
		panic(err)
	}
	defer rt.Close()

	if err := rt.LoadScript("inc.js", `function inc(x) { return x + 1 }`); err != nil {
		panic(err)
	}

	inc, err := gojacallback.NewFromGlobal[int64](rt, "inc")
	if err != nil {
		panic(err)
	}
	defer inc.Stop()

	v, err := inc.CallSync(context.Background(), 41)
	if err != nil {
		panic(err)
	}
	fmt.Println(v)
	// Output: 42
}

func ExampleCallback_Call() {
	rt, err := gojacallback.NewRuntime(context.Background())
	if err != nil {
		panic(err)
	}
	defer rt.Close()

	if err := rt.LoadScript("greet.js", `function greet(name) { return "hello, " + name }`); err != nil {
		panic(err)
	}

	greet, err := gojacallback.NewFromGlobal[string](rt, "greet")
	if err != nil {
		panic(err)
	}
	defer greet.Stop()

	done := make(chan struct{})
	err = greet.Call(
		func(s string) { fmt.Println(s); close(done) },
		func(err error) { fmt.Println("error:", err); close(done) },
		"world",
	)
	if err != nil {
		panic(err)
	}
	<-done
	// Output: hello, world
}
