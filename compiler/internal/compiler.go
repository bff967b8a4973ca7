package internal

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/xiaobogaga/jackc/vmcode"
	"golang.org/x/sync/errgroup"
)

const (
	jackExt   = ".jack"
	vmExt     = ".vm"
	xmlExt    = ".xml"
	tokensExt = "T.xml"
)

// CompileClass compiles the jack class read from `rd` and writes its vm code to `w`.
// Nothing is written when the class has an error.
func CompileClass(rd io.Reader, w io.Writer) error {
	tokens, err := Tokenize(rd)
	if err != nil {
		return err
	}
	buf := &bytes.Buffer{}
	writer := NewVMWriter(buf)
	engine := NewCompilationEngine(tokens, writer)
	if err = engine.CompileClass(); err != nil {
		return err
	}
	if err = writer.Close(); err != nil {
		return err
	}
	_, err = w.Write(buf.Bytes())
	return err
}

type Options struct {
	XML     bool // write the parse tree instead of vm code.
	Tokens  bool // with XML, also write the token listing.
	Verify  bool // re-read the written vm code before saving it.
	Jobs    int
	Verbose bool
}

// Result of compiling one source file. Outputs is empty when Err is set.
type Result struct {
	Source  string
	Outputs []string
	Err     error
}

// CollectJackFiles returns `path` itself when it is a jack file, or the jack files directly
// inside it when it is a directory, sorted by name.
func CollectJackFiles(path string) ([]string, error) {
	info, err := os.Stat(path)
	if err != nil {
		return nil, err
	}
	if !info.IsDir() {
		if filepath.Ext(path) != jackExt {
			return nil, fmt.Errorf("%s is not a %s file", path, jackExt)
		}
		return []string{path}, nil
	}
	entries, err := os.ReadDir(path)
	if err != nil {
		return nil, err
	}
	var files []string
	for _, entry := range entries {
		// Ignore sub path
		if entry.IsDir() || filepath.Ext(entry.Name()) != jackExt {
			continue
		}
		files = append(files, filepath.Join(path, entry.Name()))
	}
	if len(files) == 0 {
		return nil, fmt.Errorf("no %s file in %s", jackExt, path)
	}
	sort.Strings(files)
	return files, nil
}

// OutputPath replaces the extension of `src` with `ext`.
func OutputPath(src, ext string) string {
	return strings.TrimSuffix(src, filepath.Ext(src)) + ext
}

// Compile compiles every jack file found at `path`. Files are independent: a failing file
// gets no output and does not stop the others. Results are in the order of
// CollectJackFiles, the returned error joins the error of every failed file.
func Compile(path string, opts Options) ([]*Result, error) {
	files, err := CollectJackFiles(path)
	if err != nil {
		return nil, err
	}
	jobs := opts.Jobs
	if jobs < 1 {
		jobs = 1
	}
	results := make([]*Result, len(files))
	group := &errgroup.Group{}
	group.SetLimit(jobs)
	for i, file := range files {
		i, file := i, file
		group.Go(func() error {
			results[i] = compileFile(file, opts)
			return nil
		})
	}
	// compileFile reports failures through its result.
	_ = group.Wait()

	var errs []error
	for _, result := range results {
		if result.Err != nil {
			errs = append(errs, fmt.Errorf("%s: %w", result.Source, result.Err))
		}
	}
	return results, errors.Join(errs...)
}

func compileFile(src string, opts Options) *Result {
	result := &Result{Source: src}
	if opts.Verbose {
		fmt.Printf("[Compiler]: compiling %s\n", src)
	}
	content, err := os.ReadFile(src)
	if err != nil {
		result.Err = err
		return result
	}
	outputs, err := generate(content, src, opts)
	if err != nil {
		result.Err = err
		return result
	}
	// Everything is generated before the first file is written.
	paths := make([]string, 0, len(outputs))
	for path := range outputs {
		paths = append(paths, path)
	}
	sort.Strings(paths)
	for _, path := range paths {
		if err = os.WriteFile(path, outputs[path], 0666); err != nil {
			result.Err = fmt.Errorf("failed to save to path: %s, err: %w", path, err)
			// A failed file leaves no output behind.
			for _, written := range result.Outputs {
				_ = os.Remove(written)
			}
			result.Outputs = nil
			return result
		}
		result.Outputs = append(result.Outputs, path)
	}
	return result
}

// generate returns the content of every output file of one source, keyed by path.
func generate(content []byte, src string, opts Options) (map[string][]byte, error) {
	outputs := map[string][]byte{}
	if opts.XML {
		buf := &bytes.Buffer{}
		if err := Analyze(bytes.NewReader(content), buf); err != nil {
			return nil, err
		}
		outputs[OutputPath(src, xmlExt)] = buf.Bytes()
		if opts.Tokens {
			buf := &bytes.Buffer{}
			if err := WriteTokens(bytes.NewReader(content), buf); err != nil {
				return nil, err
			}
			outputs[OutputPath(src, tokensExt)] = buf.Bytes()
		}
		return outputs, nil
	}

	buf := &bytes.Buffer{}
	if err := CompileClass(bytes.NewReader(content), buf); err != nil {
		return nil, err
	}
	if opts.Verify {
		if err := verify(buf.Bytes()); err != nil {
			return nil, err
		}
		if opts.Verbose {
			fmt.Printf("[Compiler]: verified vm code of %s\n", src)
		}
	}
	outputs[OutputPath(src, vmExt)] = buf.Bytes()
	return outputs, nil
}

// verify reads back written vm code and checks that its labels are consistent.
func verify(code []byte) error {
	cmds, err := vmcode.Parse(bytes.NewReader(code))
	if err != nil {
		return fmt.Errorf("invalid vm code: %w", err)
	}
	return vmcode.CheckLabels(cmds)
}
