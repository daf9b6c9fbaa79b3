// Copyright 2023 Buf Technologies, Inc.
//
// All rights reserved.

package uriapp

import (
	"bufio"
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"runtime"
	"strings"

	"connectrpc.com/uri"
	"connectrpc.com/uri/internal/uriservice"
	"golang.org/x/sync/errgroup"
	"google.golang.org/protobuf/encoding/protojson"
)

type parseResult struct {
	input string
	uri   *uri.URI
	err   error
}

func runParse(ctx context.Context, arguments []string, streams Streams) error {
	flags := flag.NewFlagSet("parse", flag.ContinueOnError)
	flags.SetOutput(streams.Stderr)
	asJSON := flags.Bool("json", false, "print each URI as a JSON object")
	jobs := flags.Int("jobs", runtime.GOMAXPROCS(0), "number of inputs to parse concurrently")
	caret := flags.Bool("caret", false, "point at the offending column when reporting errors")
	if err := flags.Parse(arguments); err != nil {
		return err
	}
	if *jobs < 1 {
		return fmt.Errorf("-jobs must be positive, got %d", *jobs)
	}

	inputs := flags.Args()
	if len(inputs) == 0 {
		var err error
		if inputs, err = readLines(streams.Stdin); err != nil {
			return err
		}
	}

	results, err := parseAll(ctx, inputs, *jobs)
	if err != nil {
		return err
	}

	var rejected int
	for _, result := range results {
		if result.err != nil {
			rejected++
			reportError(streams.Stderr, result, *caret)
			continue
		}
		if err := printURI(streams.Stdout, result, *asJSON); err != nil {
			return err
		}
	}
	if rejected > 0 {
		return fmt.Errorf("%d of %d inputs: %w", rejected, len(results), ErrRejected)
	}
	return nil
}

// parseAll parses inputs with at most jobs parses in flight. Results are in
// input order.
func parseAll(ctx context.Context, inputs []string, jobs int) ([]parseResult, error) {
	results := make([]parseResult, len(inputs))
	group, ctx := errgroup.WithContext(ctx)
	group.SetLimit(jobs)
	for i, input := range inputs {
		i, input := i, input
		group.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			parsed, err := uri.Parse(input)
			results[i] = parseResult{input: input, uri: parsed, err: err}
			return nil
		})
	}
	if err := group.Wait(); err != nil {
		return nil, err
	}
	return results, nil
}

func readLines(reader io.Reader) ([]string, error) {
	var lines []string
	scanner := bufio.NewScanner(reader)
	for scanner.Scan() {
		if line := strings.TrimSpace(scanner.Text()); line != "" {
			lines = append(lines, line)
		}
	}
	return lines, scanner.Err()
}

func reportError(w io.Writer, result parseResult, caret bool) {
	var parseErr *uri.Error
	if caret && errors.As(result.err, &parseErr) {
		fmt.Fprintln(w, parseErr.Caret())
		return
	}
	fmt.Fprintf(w, "%s: %v\n", result.input, result.err)
}

func printURI(w io.Writer, result parseResult, asJSON bool) error {
	if asJSON {
		components, err := uriservice.Describe(result.uri)
		if err != nil {
			return err
		}
		data, err := protojson.Marshal(components)
		if err != nil {
			return err
		}
		_, err = fmt.Fprintf(w, "%s\n", data)
		return err
	}
	_, err := fmt.Fprintf(w, "%s\t%s\n", result.input, formatComponents(result.uri))
	return err
}

// formatComponents renders the present components as key=value pairs.
func formatComponents(u *uri.URI) string {
	var fields []string
	if scheme, ok := u.Scheme(); ok {
		fields = append(fields, "scheme="+scheme)
	}
	if authority := u.Authority(); authority != nil {
		if userinfo, ok := authority.Userinfo(); ok {
			fields = append(fields, "userinfo="+userinfo)
		}
		fields = append(fields, "host="+authority.Host())
		if port, ok := authority.PortString(); ok {
			fields = append(fields, "port="+port)
		}
	}
	fields = append(fields, "path="+u.Path())
	if query, ok := u.Query(); ok {
		fields = append(fields, "query="+query)
	}
	if fragment, ok := u.Fragment(); ok {
		fields = append(fields, "fragment="+fragment)
	}
	return strings.Join(fields, " ")
}
