// cmd/prequal-batch/main.go
package main

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"runtime"
	"strings"
	"syscall"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"vendorhub-workers/internal/common/logger"
	"vendorhub-workers/internal/common/validation"
	"vendorhub-workers/internal/prequal"
)

const maxLineSize = 1 << 20

var profileSchema = validation.MustCompile(prequal.ProfileSchema)

type outputLine struct {
	Line   int             `json:"line"`
	ID     json.RawMessage `json:"id,omitempty"`
	Result *prequal.Result `json:"result,omitempty"`
	Error  string          `json:"error,omitempty"`
}

type summary struct {
	total      int
	invalid    int
	byDecision map[prequal.Decision]int
}

func main() {
	inPath := flag.String("in", "-", "JSON lines file of applicant profiles (- for stdin)")
	outPath := flag.String("out", "-", "Output JSON lines file (- for stdout)")
	workers := flag.Int("workers", runtime.NumCPU(), "Number of concurrent evaluations")
	logLevel := flag.String("log-level", "info", "Log level (debug, info, warn, error)")
	flag.Parse()

	zapLog, err := logger.New(*logLevel, "console", "stderr")
	if err != nil {
		fmt.Fprintf(os.Stderr, "logger init failed: %v\n", err)
		os.Exit(1)
	}
	defer zapLog.Sync()

	in := os.Stdin
	if *inPath != "-" {
		f, err := os.Open(*inPath)
		if err != nil {
			zapLog.Error("open input", zap.Error(err))
			os.Exit(1)
		}
		defer f.Close()
		in = f
	}

	out := os.Stdout
	if *outPath != "-" {
		f, err := os.Create(*outPath)
		if err != nil {
			zapLog.Error("create output", zap.Error(err))
			os.Exit(1)
		}
		defer f.Close()
		out = f
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	s, err := run(ctx, in, out, *workers)
	if err != nil {
		zapLog.Error("batch failed", zap.Error(err))
		os.Exit(1)
	}

	zapLog.Info("batch complete",
		zap.Int("profiles", s.total),
		zap.Int("invalid", s.invalid),
		zap.Int("approved", s.byDecision[prequal.DecisionApproved]),
		zap.Int("conditional", s.byDecision[prequal.DecisionConditional]),
		zap.Int("declined", s.byDecision[prequal.DecisionDeclined]),
	)
}

// run evaluates every profile line of in and writes one output line per
// input line, in input order. Blank lines are skipped. Only I/O failures and
// cancellation are returned as errors; bad profiles become error lines.
func run(ctx context.Context, in io.Reader, out io.Writer, workers int) (summary, error) {
	lines, err := readLines(in)
	if err != nil {
		return summary{}, err
	}

	if workers < 1 {
		workers = 1
	}

	results := make([]outputLine, len(lines))
	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(workers)

	for i, l := range lines {
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			results[i] = evaluateLine(l.number, l.data)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return summary{}, err
	}

	s := summary{byDecision: make(map[prequal.Decision]int)}
	w := bufio.NewWriter(out)
	enc := json.NewEncoder(w)
	for _, r := range results {
		s.total++
		if r.Result == nil {
			s.invalid++
		} else {
			s.byDecision[r.Result.Decision]++
		}
		if err := enc.Encode(r); err != nil {
			return s, fmt.Errorf("write line %d: %w", r.Line, err)
		}
	}
	if err := w.Flush(); err != nil {
		return s, fmt.Errorf("flush output: %w", err)
	}
	return s, nil
}

type inputLine struct {
	number int
	data   []byte
}

func readLines(in io.Reader) ([]inputLine, error) {
	var lines []inputLine

	scanner := bufio.NewScanner(in)
	scanner.Buffer(make([]byte, 0, 64*1024), maxLineSize)
	n := 0
	for scanner.Scan() {
		n++
		data := scanner.Bytes()
		if len(bytes.TrimSpace(data)) == 0 {
			continue
		}
		lines = append(lines, inputLine{number: n, data: append([]byte(nil), data...)})
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("read input: %w", err)
	}
	return lines, nil
}

func evaluateLine(number int, data []byte) outputLine {
	line := outputLine{Line: number}

	var envelope struct {
		ID json.RawMessage `json:"id"`
	}
	if err := json.Unmarshal(data, &envelope); err == nil {
		line.ID = envelope.ID
	}

	res, err := profileSchema.Validate(data)
	if err != nil {
		line.Error = "invalid JSON: " + err.Error()
		return line
	}
	if !res.Valid {
		line.Error = strings.Join(res.GetErrorMessages(), "; ")
		return line
	}

	profile, err := prequal.DecodeProfile(data)
	if err != nil {
		line.Error = err.Error()
		return line
	}

	result := prequal.Evaluate(profile)
	line.Result = &result
	return line
}
