// Command lvc is the compiler's CLI entry point: compile a single file,
// compile a whole package directory, or print its dependency descriptor.
// Adapted from the teacher's own cobra-based demo CLI (demo/cmd/main.go).
package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/oxhq/lvc/internal/ast"
	"github.com/oxhq/lvc/internal/config"
	"github.com/oxhq/lvc/internal/discover"
	"github.com/oxhq/lvc/internal/driver"
	"github.com/oxhq/lvc/internal/fragment"
	"github.com/oxhq/lvc/internal/logging"
	"github.com/oxhq/lvc/internal/module"
	"github.com/oxhq/lvc/internal/outwriter"
)

var (
	envFile  string
	logLevel string
)

func main() {
	root := &cobra.Command{
		Use:   "lvc",
		Short: "Compile LiveElements-style component source to target script",
	}
	root.PersistentFlags().StringVar(&envFile, "env-file", "", "path to a .env file (defaults to ./.env if present)")
	root.PersistentFlags().StringVar(&logLevel, "log-level", "info", "debug, info, warn, or error")

	root.AddCommand(newCompileCmd(), newCompileModuleCmd(), newDescriptorCmd())

	if err := root.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newDriver() *driver.Driver {
	opts := config.Load(envFile)
	return driver.New(opts, logging.NewStderr(logLevel))
}

func newCompileCmd() *cobra.Command {
	var out string
	var showDiff bool
	cmd := &cobra.Command{
		Use:   "compile <file.lv>",
		Short: "Compile a single file with no enclosing package",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			src, err := os.ReadFile(args[0])
			if err != nil {
				return err
			}
			output, err := newDriver().CompileFile(args[0], string(src))
			if err != nil {
				return err
			}
			if showDiff {
				fmt.Fprint(os.Stderr, fragment.Diff(args[0], string(src), output))
			}
			return writeOutput(out, output)
		},
	}
	cmd.Flags().StringVarP(&out, "out", "o", "", "output file (defaults to stdout)")
	cmd.Flags().BoolVar(&showDiff, "diff", false, "print a unified diff of source vs. compiled output to stderr")
	return cmd
}

func newCompileModuleCmd() *cobra.Command {
	var outDir string
	cmd := &cobra.Command{
		Use:   "compile-module <dir> <module-uri>",
		Short: "Discover and compile every .lv file under dir as one package",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			dir, moduleURI := args[0], args[1]
			paths, err := discover.Walk(context.Background(), discover.DefaultScope(dir))
			if err != nil {
				return err
			}
			files := make(map[string]string, len(paths))
			byModulePath := map[string]string{}
			for _, p := range paths {
				src, err := os.ReadFile(p)
				if err != nil {
					return err
				}
				rel, err := filepath.Rel(dir, p)
				if err != nil {
					return err
				}
				modulePath := toModulePath(rel)
				files[modulePath] = string(src)
				byModulePath[modulePath] = p
			}

			compiled, err := newDriver().CompileModule(moduleURI, files)
			if err != nil {
				return err
			}
			for _, cf := range compiled {
				if outDir == "" {
					fmt.Printf("// ---- %s ----\n%s\n", cf.Path, cf.Output)
					continue
				}
				dest := filepath.Join(outDir, cf.Path+".js")
				if err := outwriter.Write(dest, cf.Output); err != nil {
					return err
				}
			}
			return nil
		},
	}
	cmd.Flags().StringVar(&outDir, "out-dir", "", "directory to write compiled .js files into (defaults to stdout)")
	return cmd
}

func newDescriptorCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "descriptor <dir> <module-uri>",
		Short: "Print the dependency descriptor for every .lv file under dir",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			dir, moduleURI := args[0], args[1]
			paths, err := discover.Walk(context.Background(), discover.DefaultScope(dir))
			if err != nil {
				return err
			}

			d := newDriver()
			mod := module.NewModule(moduleURI)
			for _, p := range paths {
				src, err := os.ReadFile(p)
				if err != nil {
					return err
				}
				rel, err := filepath.Rel(dir, p)
				if err != nil {
					return err
				}
				modulePath := toModulePath(rel)

				prog, err := d.Parse(modulePath, string(src))
				if err != nil {
					return err
				}
				fe := mod.AddFileExport(modulePath)
				for _, exp := range prog.Exports {
					if cd, ok := exp.(*ast.ComponentDeclaration); ok && cd.Name != "" {
						fe.AddExport(cd.Name, module.KindComponent)
					}
				}
				for _, imp := range prog.Imports {
					fe.AddDependency(imp.Path)
				}
			}

			out, err := json.MarshalIndent(mod, "", "  ")
			if err != nil {
				return err
			}
			fmt.Println(string(out))
			return nil
		},
	}
	return cmd
}

func writeOutput(path, content string) error {
	if path == "" {
		fmt.Print(content)
		return nil
	}
	return outwriter.Write(path, content)
}

// toModulePath turns a filesystem-relative path ("ui/button.lv") into the
// slash-separated module path the graph and resolver key files by — the
// same shape module.Resolver.ResolveImportPath returns for a source
// import's dotted path ("ui.button" -> "ui/button").
func toModulePath(rel string) string {
	rel = strings.TrimSuffix(rel, filepath.Ext(rel))
	return filepath.ToSlash(rel)
}
