// Package storage moves any JSON-serializable record between Go values and
// JSON documents held in files, strings or behind a url.
package storage

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"

	"lab47.dev/dpm/pkg/cleanhttp"
)

const stringSource = "<string>"

// Doer is the part of *http.Client that FromURL needs.
type Doer interface {
	Do(req *http.Request) (*http.Response, error)
}

// FromString decodes contents into a T without doing any I/O.
func FromString[T any](contents string) (T, error) {
	return decode[T]([]byte(contents), stringSource)
}

// FromJSON reads the file at path and decodes it into a T.
func FromJSON[T any](path string) (T, error) {
	var zero T

	b, err := os.ReadFile(path)
	if err != nil {
		return zero, NewError(ErrIO, path, err)
	}

	return decode[T](b, path)
}

// ToJSON encodes data as indented JSON and writes it to path, truncating
// whatever was there. Nothing is written if encoding fails. The parent
// directory must already exist.
func ToJSON[T any](data T, path string) error {
	b, err := Encode(data)
	if err != nil {
		return NewError(ErrSerialize, path, err)
	}

	f, err := os.Create(path)
	if err != nil {
		return NewError(ErrIO, path, err)
	}

	_, err = f.Write(b)

	if cerr := f.Close(); err == nil {
		err = cerr
	}

	if err != nil {
		return NewError(ErrIO, path, err)
	}

	return nil
}

// FromURL issues a single GET against url and decodes the response body
// into a T. It blocks only the calling goroutine; deadlines and
// cancellation come from ctx. A nil client gets a fresh cleanhttp client.
func FromURL[T any](ctx context.Context, client Doer, url string) (T, error) {
	var zero T

	if client == nil {
		client = cleanhttp.NewClient()
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return zero, NewError(ErrNetwork, url, err)
	}

	resp, err := client.Do(req)
	if err != nil {
		return zero, NewError(ErrNetwork, url, err)
	}

	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return zero, NewError(ErrNetwork, url, fmt.Errorf("unexpected status: %s", resp.Status))
	}

	b, err := io.ReadAll(resp.Body)
	if err != nil {
		return zero, NewError(ErrNetwork, url, err)
	}

	return decode[T](b, url)
}

// Encode renders data the way ToJSON writes it: two space indentation and a
// trailing newline.
func Encode[T any](data T) ([]byte, error) {
	b, err := json.MarshalIndent(data, "", "  ")
	if err != nil {
		return nil, err
	}

	return append(b, '\n'), nil
}

func decode[T any](b []byte, source string) (T, error) {
	var v T

	err := json.Unmarshal(b, &v)
	if err != nil {
		var zero T
		return zero, NewError(ErrParse, source, err)
	}

	return v, nil
}
