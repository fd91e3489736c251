// hstoreconv converts between PostgreSQL hstore text and other formats.
//
// By default each input line is an hstore value, as printed by psql or COPY,
// and is written out as a JSON object.  With --from json each input line is a
// JSON object (comments allowed) and is written out as hstore text.  Input
// and hstore output pass through the --client-encoding charset.
package main

import (
	"bufio"
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/fxamacker/cbor/v2"
	"github.com/spf13/pflag"
	"github.com/tidwall/jsonc"
	"go.mongodb.org/mongo-driver/bson"
	"gopkg.in/yaml.v3"

	"github.com/xdg-go/hstore"
)

func main() {
	if err := run(os.Args[1:], os.Stdin, os.Stdout, os.Stderr); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

type options struct {
	from           string
	to             string
	clientEncoding string
	logLevel       string
	keepGoing      bool
	nullData       bool
}

func run(args []string, stdin io.Reader, stdout, stderr io.Writer) error {
	var opts options

	defaultEncoding := os.Getenv("PGCLIENTENCODING")
	if defaultEncoding == "" {
		defaultEncoding = "UTF8"
	}

	flagSet := pflag.NewFlagSet("hstoreconv", pflag.ContinueOnError)
	flagSet.SetOutput(stderr)
	flagSet.StringVar(&opts.from, "from", "hstore", "input format: hstore or json")
	flagSet.StringVar(&opts.to, "to", "", "output format: json, extjson, cbor, yaml or hstore (default json, or hstore with --from json)")
	flagSet.StringVarP(&opts.clientEncoding, "client-encoding", "E", defaultEncoding, "PostgreSQL client encoding of hstore text")
	flagSet.StringVar(&opts.logLevel, "log-level", "warn", "log level: debug, info, warn or error")
	flagSet.BoolVarP(&opts.keepGoing, "keep-going", "k", false, "log and skip records that fail to convert")
	flagSet.BoolVarP(&opts.nullData, "null-data", "z", false, "records are separated by NUL instead of newline")
	flagSet.BoolP("help", "h", false, "show help")

	if err := flagSet.Parse(args); err != nil {
		if err == pflag.ErrHelp {
			printHelp(flagSet, stderr)
			return nil
		}
		return err
	}
	if help, _ := flagSet.GetBool("help"); help {
		printHelp(flagSet, stderr)
		return nil
	}

	var level slog.Level
	if err := level.UnmarshalText([]byte(opts.logLevel)); err != nil {
		return fmt.Errorf("invalid --log-level %q: %w", opts.logLevel, err)
	}
	logger := slog.New(slog.NewTextHandler(stderr, &slog.HandlerOptions{Level: level}))

	conv, err := newConverter(opts, stdout, logger)
	if err != nil {
		return err
	}

	inputs := flagSet.Args()
	if len(inputs) == 0 {
		inputs = []string{"-"}
	}
	for _, name := range inputs {
		if err := conv.convertInput(name, stdin); err != nil {
			// Records converted before the failure are still written.
			return errors.Join(err, conv.close())
		}
	}
	return conv.close()
}

func printHelp(flagSet *pflag.FlagSet, w io.Writer) {
	fmt.Fprintf(w, `hstoreconv converts PostgreSQL hstore values to and from other formats.

Each input record is one line (or NUL-terminated with -z).  Files named on
the command line are read in order; with no files, or "-", stdin is read.

Usage:
  hstoreconv [flags] [file...]

Examples:
  # hstore column exported with COPY to JSON lines
  psql -Atc 'select attrs from items' | hstoreconv

  # Relaxed MongoDB extended JSON
  hstoreconv --to extjson attrs.txt

  # JSON objects back to hstore text in LATIN1
  hstoreconv --from json -E LATIN1 attrs.jsonl

Flags:
`)
	flagSet.SetOutput(w)
	flagSet.PrintDefaults()
}

type converter struct {
	opts    options
	tc      hstore.Transcoder
	logger  *slog.Logger
	out     *bufio.Writer
	cborEnc *cbor.Encoder
	yamlEnc *yaml.Encoder
	sep     byte
	skipped int
}

func newConverter(opts options, w io.Writer, logger *slog.Logger) (*converter, error) {
	tc, err := hstore.NewTranscoder(opts.clientEncoding)
	if err != nil {
		return nil, err
	}

	switch opts.from {
	case "hstore":
		if opts.to == "" {
			opts.to = "json"
		}
		switch opts.to {
		case "json", "extjson", "cbor", "yaml", "hstore":
		default:
			return nil, fmt.Errorf("unknown output format %q", opts.to)
		}
	case "json":
		if opts.to == "" {
			opts.to = "hstore"
		}
		if opts.to != "hstore" {
			return nil, fmt.Errorf("--from json only converts to hstore, not %q", opts.to)
		}
	default:
		return nil, fmt.Errorf("unknown input format %q", opts.from)
	}

	c := &converter{
		opts:   opts,
		tc:     tc,
		logger: logger,
		out:    bufio.NewWriter(w),
		sep:    '\n',
	}
	if opts.nullData {
		c.sep = 0
	}

	switch opts.to {
	case "cbor":
		encMode, err := cbor.CoreDetEncOptions().EncMode()
		if err != nil {
			return nil, fmt.Errorf("CBOR encoder initialization failed: %w", err)
		}
		c.cborEnc = encMode.NewEncoder(c.out)
	case "yaml":
		c.yamlEnc = yaml.NewEncoder(c.out)
	}

	logger.Debug("converter ready", "from", opts.from, "to", opts.to, "client_encoding", opts.clientEncoding)
	return c, nil
}

func (c *converter) convertInput(name string, stdin io.Reader) error {
	r := stdin
	if name != "-" {
		f, err := os.Open(name)
		if err != nil {
			return err
		}
		defer f.Close()
		r = f
	}

	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), 64*1024*1024)
	if c.opts.nullData {
		scanner.Split(scanNUL)
	}

	line := 0
	for scanner.Scan() {
		line++
		record := scanner.Bytes()
		if !c.opts.nullData {
			record = bytes.TrimSuffix(record, []byte{'\r'})
		}
		if err := c.convertRecord(record); err != nil {
			if !c.opts.keepGoing {
				return fmt.Errorf("%s:%d: %w", name, line, err)
			}
			c.skipped++
			c.logger.Warn("skipping record", "input", name, "record", line, "error", err)
		}
	}
	if err := scanner.Err(); err != nil {
		return fmt.Errorf("reading %s: %w", name, err)
	}
	return nil
}

func (c *converter) convertRecord(record []byte) error {
	if c.opts.from == "json" {
		return c.convertJSON(record)
	}

	text, err := c.tc.DecodeText(record)
	if err != nil {
		return err
	}
	h, err := hstore.Load(text)
	if err != nil {
		return err
	}

	switch c.opts.to {
	case "json":
		b, err := json.Marshal(h)
		if err != nil {
			return err
		}
		return c.writeRecord(b)
	case "extjson":
		doc, err := hstore.AppendBSON(nil, h)
		if err != nil {
			return err
		}
		b, err := bson.MarshalExtJSON(bson.Raw(doc), false, false)
		if err != nil {
			return err
		}
		return c.writeRecord(b)
	case "cbor":
		return c.cborEnc.Encode(h)
	case "yaml":
		return c.yamlEnc.Encode(h)
	default:
		return c.writeHstore(h)
	}
}

func (c *converter) convertJSON(record []byte) error {
	var m map[string]any
	if err := json.Unmarshal(jsonc.ToJSON(record), &m); err != nil {
		return err
	}
	if m == nil {
		return errors.New("expecting a JSON object")
	}
	return c.writeHstore(m)
}

func (c *converter) writeHstore(v any) error {
	text, err := hstore.Dump(v)
	if err != nil {
		return err
	}
	b, err := c.tc.EncodeText(text)
	if err != nil {
		return err
	}
	return c.writeRecord(b)
}

func (c *converter) writeRecord(b []byte) error {
	if _, err := c.out.Write(b); err != nil {
		return err
	}
	return c.out.WriteByte(c.sep)
}

func (c *converter) close() error {
	if c.yamlEnc != nil {
		if err := c.yamlEnc.Close(); err != nil {
			return err
		}
	}
	if c.skipped > 0 {
		c.logger.Info("conversion finished", "skipped", c.skipped)
	}
	return c.out.Flush()
}

// scanNUL is a bufio.SplitFunc for NUL-terminated records.
func scanNUL(data []byte, atEOF bool) (advance int, token []byte, err error) {
	if atEOF && len(data) == 0 {
		return 0, nil, nil
	}
	if i := bytes.IndexByte(data, 0); i >= 0 {
		return i + 1, data[:i], nil
	}
	if atEOF {
		return len(data), data, nil
	}
	return 0, nil, nil
}
