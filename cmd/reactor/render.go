package main

import (
	"encoding/json"
	stderrors "errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/vango-dev/reactor/internal/errors"
	"github.com/vango-dev/reactor/pkg/compiler"
	"github.com/vango-dev/reactor/pkg/snapshot"
	"github.com/vango-dev/reactor/pkg/vdom"
)

func renderCmd() *cobra.Command {
	var (
		templatePath string
		statePath    string
		title        string
	)

	cmd := &cobra.Command{
		Use:   "render",
		Short: "Render a template to HTML",
		Long: `Compile a template, mount it with the given JSON state and print
the resulting HTML.

Examples:
  reactor render --template page.html
  reactor render --template page.html --state state.json --title Home`,
		RunE: func(cmd *cobra.Command, args []string) error {
			comp, err := loadTemplate(templatePath, statePath)
			if err != nil {
				return err
			}
			html, err := snapshot.Render(comp, nil)
			if err != nil {
				return err
			}
			if title != "" {
				html = snapshot.Document(title, html)
			}
			fmt.Fprintln(cmd.OutOrStdout(), html)
			return nil
		},
	}

	cmd.Flags().StringVarP(&templatePath, "template", "t", "", "Template file to render")
	cmd.Flags().StringVarP(&statePath, "state", "s", "", "JSON object used as the template's state")
	cmd.Flags().StringVar(&title, "title", "", "Wrap the output in a full HTML document with this title")
	_ = cmd.MarkFlagRequired("template")

	return cmd
}

func compileCmd() *cobra.Command {
	var templatePath string

	cmd := &cobra.Command{
		Use:   "compile",
		Short: "Print the render code generated for a template",
		Long: `Parse and transform a template and print the equivalent Go render
function. Useful for checking how a template is interpreted.

Examples:
  reactor compile --template page.html`,
		RunE: func(cmd *cobra.Command, args []string) error {
			src, err := readTemplate(templatePath)
			if err != nil {
				return err
			}
			root, err := compiler.Parse(src)
			if err != nil {
				return locate(err, templatePath)
			}
			if err := compiler.Transform(root); err != nil {
				return locate(err, templatePath)
			}
			fmt.Fprint(cmd.OutOrStdout(), compiler.Generate(root))
			return nil
		},
	}

	cmd.Flags().StringVarP(&templatePath, "template", "t", "", "Template file to compile")
	_ = cmd.MarkFlagRequired("template")

	return cmd
}

func readTemplate(path string) (string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return "", errors.New("CLI001").
			WithDetailf("cannot read template %s", path).
			Wrap(err)
	}
	return string(data), nil
}

// locate points a compile error at the template file it came from, with the
// surrounding lines read from disk.
func locate(err error, path string) error {
	var e *errors.Error
	if stderrors.As(err, &e) && e.Location != nil {
		e.WithLocation(path, e.Location.Line, e.Location.Column)
	}
	return err
}

// loadTemplate compiles the template at path into a component whose setup
// state is the JSON object at statePath.
func loadTemplate(path, statePath string) (*vdom.Component, error) {
	src, err := readTemplate(path)
	if err != nil {
		return nil, err
	}
	if _, err := compiler.Compile(src); err != nil {
		return nil, locate(err, path)
	}

	state := map[string]any{}
	if statePath != "" {
		data, err := os.ReadFile(statePath)
		if err != nil {
			return nil, errors.New("CLI001").WithDetailf("cannot read state %s", statePath).Wrap(err)
		}
		if err := json.Unmarshal(data, &state); err != nil {
			return nil, errors.New("CLI001").
				WithDetailf("state %s: %v", statePath, err).
				WithSuggestion("The state file must hold a JSON object").
				Wrap(err)
		}
	}

	name := strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
	return snapshot.TemplateComponent(name, src, state), nil
}
