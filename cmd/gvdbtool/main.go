// Command gvdbtool inspects and builds GVDB files from the command line:
// list keys, fetch a single value, or assemble a file from a newline-delimited
// key/value text listing.
package main

import (
	"bufio"
	"flag"
	"fmt"
	"os"
	"strings"

	"github.com/kelwin/gvdbgo/gvdbfile"
	"github.com/kelwin/gvdbgo/table"
	"github.com/kelwin/gvdbgo/variant"
)

func main() {
	if len(os.Args) < 2 {
		usage()
		os.Exit(2)
	}

	var err error
	switch os.Args[1] {
	case "list":
		err = runList(os.Args[2:])
	case "get":
		err = runGet(os.Args[2:])
	case "build":
		err = runBuild(os.Args[2:])
	default:
		usage()
		os.Exit(2)
	}

	if err != nil {
		fmt.Fprintf(os.Stderr, "gvdbtool: %v\n", err)
		os.Exit(1)
	}
}

func usage() {
	fmt.Fprintln(os.Stderr, "usage: gvdbtool <list|get|build> [flags]")
}

func runList(args []string) error {
	fs := flag.NewFlagSet("list", flag.ExitOnError)
	path := fs.String("file", "", "path to a GVDB file")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if *path == "" {
		return fmt.Errorf("-file is required")
	}

	f, closeFn, err := gvdbfile.OpenMapped(*path)
	if err != nil {
		return err
	}
	defer closeFn()

	keys, err := f.List()
	if err != nil {
		return err
	}
	for _, k := range keys {
		fmt.Println(k)
	}
	return nil
}

func runGet(args []string) error {
	fs := flag.NewFlagSet("get", flag.ExitOnError)
	path := fs.String("file", "", "path to a GVDB file")
	key := fs.String("key", "", "key to look up")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if *path == "" || *key == "" {
		return fmt.Errorf("-file and -key are required")
	}

	f, closeFn, err := gvdbfile.OpenMapped(*path)
	if err != nil {
		return err
	}
	defer closeFn()

	v, ok, err := f.Get(*key)
	if err != nil {
		return err
	}
	if !ok {
		return fmt.Errorf("key %q not found", *key)
	}

	switch v.Kind {
	case variant.KindString:
		fmt.Println(v.AsString())
	case variant.KindBool:
		fmt.Println(v.AsBool())
	case variant.KindBytes:
		fmt.Printf("%x\n", v.AsBytes())
	default:
		fmt.Println(v.AsInt64())
	}
	return nil
}

// runBuild assembles a GVDB file from a text listing of "key\tvalue" lines,
// each value stored as a string. It exists to exercise Assemble from the
// command line; nested tables and non-string kinds aren't expressible in
// this simple format.
func runBuild(args []string) error {
	fs := flag.NewFlagSet("build", flag.ExitOnError)
	in := fs.String("in", "", "path to a key\\tvalue text listing")
	out := fs.String("out", "", "path to write the assembled GVDB file")
	bundle := fs.Bool("bundle", false, "set the bundle flag in the output header")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if *in == "" || *out == "" {
		return fmt.Errorf("-in and -out are required")
	}

	inFile, err := os.Open(*in)
	if err != nil {
		return err
	}
	defer inFile.Close()

	t := table.New()
	scanner := bufio.NewScanner(inFile)
	for scanner.Scan() {
		line := scanner.Text()
		if line == "" {
			continue
		}
		parts := strings.SplitN(line, "\t", 2)
		if len(parts) != 2 {
			return fmt.Errorf("malformed line (want key<TAB>value): %q", line)
		}
		t.Insert([]byte(parts[0]), 'v', variant.String(parts[1]))
	}
	if err := scanner.Err(); err != nil {
		return err
	}

	var opts []gvdbfile.BuildOption
	if *bundle {
		opts = append(opts, gvdbfile.WithBundle())
	}

	data, err := gvdbfile.Assemble(t, opts...)
	if err != nil {
		return err
	}

	return os.WriteFile(*out, data, 0o644)
}
