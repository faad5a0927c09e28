package main

import (
	"bufio"
	"bytes"
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"os"

	"go.uber.org/zap"
	"golang.org/x/term"

	"github.com/wippyai/zerowire/errors"
	"github.com/wippyai/zerowire/stream"
	"github.com/wippyai/zerowire/variant"
)

// maxEncoded bounds the output buffer of -encode.
const maxEncoded = 1 << 30

func main() {
	var (
		file        = flag.String("file", "", "Path to a file of encoded values")
		offset      = flag.Int("offset", 0, "Byte offset of the first value")
		configPath  = flag.String("config", "", "Path to a TOML config file")
		interactive = flag.Bool("i", false, "Interactive mode with TUI")
		hex         = flag.Bool("x", false, "Print a hex dump of each value")
		encodeFile  = flag.String("encode", "", "Encode the JSON values in this file")
		outFile     = flag.String("out", "", "Output path for -encode")
		verbose     = flag.Bool("v", false, "Log decoder decisions to stderr")
	)
	flag.Parse()

	if *file == "" && *encodeFile == "" {
		fmt.Fprintln(os.Stderr, "Usage: zwinspect -file <f.bin> [-offset n] [-config c.toml] [-x]")
		fmt.Fprintln(os.Stderr, "       zwinspect -file <f.bin> -i  (interactive mode)")
		fmt.Fprintln(os.Stderr, "       zwinspect -encode <in.json> -out <f.bin>")
		os.Exit(1)
	}

	logger := zap.NewNop()
	if *verbose {
		l, err := zap.NewDevelopment()
		if err == nil {
			logger = l
		}
	}
	defer logger.Sync() //nolint:errcheck
	variant.SetLogger(logger)
	stream.SetLogger(logger)

	cfg, err := loadConfig(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
	cfg.Color = cfg.Color && term.IsTerminal(int(os.Stdout.Fd()))

	switch {
	case *encodeFile != "":
		err = runEncode(*encodeFile, *outFile)
	case *interactive:
		err = runInteractive(*file, *offset, cfg)
	default:
		err = run(os.Stdout, *file, *offset, *hex, cfg)
	}
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func run(out io.Writer, path string, offset int, hex bool, cfg Config) error {
	if offset < 0 {
		return fmt.Errorf("negative offset %d", offset)
	}
	f, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("open: %w", err)
	}
	defer f.Close()
	if _, err := f.Seek(int64(offset), io.SeekStart); err != nil {
		return fmt.Errorf("seek: %w", err)
	}

	w := bufio.NewWriter(out)
	defer w.Flush()

	nodes, walkErr := inspect(bufio.NewReader(f), offset, cfg)
	p := newPalette(cfg.Color)
	if !hex {
		if err := printTree(w, nodes, p); err != nil {
			return err
		}
		return walkErr
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read file: %w", err)
	}
	for _, n := range nodes {
		fmt.Fprintln(w, p.line(n))
		if n.depth == 0 {
			fmt.Fprint(w, p.hexRow.Render(hexdump(data[n.offset:n.offset+n.size], n.offset, cfg.HexWidth)))
		}
	}
	return walkErr
}

func runEncode(in, out string) error {
	if out == "" {
		return fmt.Errorf("-encode needs -out")
	}
	src, err := os.Open(in)
	if err != nil {
		return fmt.Errorf("open: %w", err)
	}
	defer src.Close()

	enc, count, err := encodeJSON(src)
	if err != nil {
		return err
	}
	if err := os.WriteFile(out, enc, 0o644); err != nil {
		return fmt.Errorf("write: %w", err)
	}
	fmt.Printf("Encoded %d values, %d bytes\n", count, len(enc))
	return nil
}

// encodeJSON encodes each JSON value in r as a variant value, growing the
// output buffer when a value does not fit.
func encodeJSON(r io.Reader) ([]byte, int, error) {
	dec := json.NewDecoder(r)
	dec.UseNumber()

	buf := make([]byte, 4096)
	pos, count := 0, 0
	b := variant.NewValueBuilder()
	for {
		var x any
		err := dec.Decode(&x)
		if err == io.EOF {
			return buf[:pos], count, nil
		}
		if err != nil {
			return nil, count, fmt.Errorf("json value %d: %w", count, err)
		}
		for {
			err = b.Wrap(buf, pos, len(buf)).Encode(x)
			if !errors.HasKind(err, errors.KindOutOfBounds) || len(buf) >= maxEncoded {
				break
			}
			buf = append(buf, make([]byte, len(buf))...)
		}
		if err != nil {
			return nil, count, fmt.Errorf("encode value %d: %w", count, err)
		}
		pos = b.Limit()
		count++
	}
}

// loadFile reads path from offset for the interactive browser.
func loadFile(path string, offset int, cfg Config) ([]byte, []node, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, nil, fmt.Errorf("read file: %w", err)
	}
	if offset < 0 || offset > len(data) {
		return nil, nil, fmt.Errorf("offset %d outside file of %d bytes", offset, len(data))
	}
	nodes, err := inspect(bytes.NewReader(data[offset:]), offset, cfg)
	return data, nodes, err
}
