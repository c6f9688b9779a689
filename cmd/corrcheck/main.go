package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io/ioutil"
	"os"
	"sort"

	"github.com/Comcast/corrcheck/loader"
	"github.com/Comcast/corrcheck/tools"
	"github.com/Comcast/corrcheck/util"

	"github.com/jsccast/yaml"
)

func main() {

	if len(os.Args) < 2 {
		Usage()
		os.Exit(1)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	switch os.Args[1] {
	case "yamltojson":
		pretty := false

		switch len(os.Args) {
		case 2:
		case 3:
			switch os.Args[2] {
			case "-p":
				pretty = true
			default:
				fmt.Fprintf(os.Stderr, "error: unsupported args: %v\n", os.Args[1:])
				os.Exit(1)
			}
		default:
			fmt.Fprintf(os.Stderr, "error: unsupported args: %v\n", os.Args[1:])
			os.Exit(1)
		}

		bs, err := ioutil.ReadAll(os.Stdin)
		if err != nil {
			fmt.Fprintf(os.Stderr, "error: %v\n", err)
			os.Exit(1)
		}

		if bs, err = YAMLToJSON(bs, pretty); err != nil {
			fmt.Fprintf(os.Stderr, "error: %v\n", err)
			os.Exit(1)
		}

		if _, err = os.Stdout.Write(bs); err != nil {
			fmt.Fprintf(os.Stderr, "error: %v\n", err)
			os.Exit(1)
		}

	case "expect":
		if len(os.Args) != 3 {
			fmt.Fprintf(os.Stderr, "error: expect needs one expectations file\n")
			os.Exit(1)
		}

		errs, err := tools.RunExpectations(ctx, os.Args[2])
		if err != nil {
			fmt.Fprintf(os.Stderr, "error: %v\n", err)
			os.Exit(1)
		}

		failed := 0
		for i, err := range errs {
			if err != nil {
				failed++
				fmt.Printf("%d FAIL %v\n", i, err)
			} else {
				fmt.Printf("%d ok\n", i)
			}
		}
		if 0 < failed {
			os.Exit(1)
		}

	default:

		mod, have := Mods[os.Args[1]]
		if !have {
			fmt.Printf("Unknown subcommand \"%s\"\n", os.Args[1])
			Usage()
			os.Exit(1)
		}

		fs := mod.Flags()
		ref := fs.String("d", "", "document reference (default is stdin)")
		verbose := fs.Bool("v", false, "verbose logging")

		if err := fs.Parse(os.Args[2:]); err != nil {
			fmt.Fprintf(os.Stderr, "error: %v\n", err)
			os.Exit(1)
		}

		util.Logging = *verbose

		doc, err := ReadDocument(ctx, *ref)
		if err != nil {
			fmt.Fprintf(os.Stderr, "error: %v\n", err)
			os.Exit(1)
		}

		if err := mod.F(ctx, doc, os.Stdout); err != nil {
			fmt.Fprintf(os.Stderr, "error: %v\n", err)
			os.Exit(1)
		}
	}
}

// ReadDocument loads the referenced document or, if the reference is
// empty, reads one from stdin.
func ReadDocument(ctx context.Context, ref string) (*loader.Document, error) {
	if ref != "" {
		return loader.Load(ctx, ref)
	}
	bs, err := ioutil.ReadAll(os.Stdin)
	if err != nil {
		return nil, err
	}
	return loader.Decode("stdin", bs)
}

// YAMLToJSON converts a YAML document to JSON.
func YAMLToJSON(bs []byte, pretty bool) ([]byte, error) {
	var x interface{}
	if err := yaml.Unmarshal(bs, &x); err != nil {
		return nil, err
	}
	if pretty {
		return json.MarshalIndent(&x, "", "  ")
	}
	return json.Marshal(&x)
}

func Usage() {
	fmt.Printf("Subcommands:\n\n")
	names := make([]string, 0, len(Mods))
	for name := range Mods {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		mod := Mods[name]
		mod.Flags().Usage()
		fmt.Println("  " + mod.Doc())
		fmt.Println()
	}
	fmt.Println("Usage of yamltojson:")
	// go vet says "Println call ends with newline"!
	fmt.Printf("  -p    pretty-print\n\n")
	fmt.Printf("Usage of expect: EXPECTATIONS_FILE\n\n")
	fmt.Printf("Every other subcommand also takes -d REF (filename or URL) and -v.\n\n")
}
