package handlers

import (
	"encoding/json"
	"errors"
	"time"
)

var errQueryTimeout = errors.New("database operation timed out")

// executer matches the terminal step of a postgrest-go query chain.
type executer interface {
	Execute() ([]byte, int64, error)
}

// execute runs a Supabase query but gives up after timeout, so one slow
// store round-trip cannot hang the request. The abandoned goroutine finishes
// in the background; its result is discarded.
func execute(q executer, timeout time.Duration) ([]byte, error) {
	type result struct {
		data []byte
		err  error
	}

	ch := make(chan result, 1)
	go func() {
		data, _, err := q.Execute()
		ch <- result{data: data, err: err}
	}()

	select {
	case r := <-ch:
		return r.data, r.err
	case <-time.After(timeout):
		return nil, errQueryTimeout
	}
}

// fetch runs the query and unmarshals the JSON rows into dst.
func fetch(q executer, timeout time.Duration, dst interface{}) error {
	data, err := execute(q, timeout)
	if err != nil {
		return err
	}
	return json.Unmarshal(data, dst)
}
