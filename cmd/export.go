package cmd

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/FlorianRuen/devhub/model"
	"github.com/FlorianRuen/devhub/playground"
	"github.com/FlorianRuen/devhub/service"
	log "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
)

// project files read from a directory, all optional
const (
	htmlFileName = "index.html"
	cssFileName  = "style.css"
	jsFileName   = "script.js"
)

var (
	exportName   string
	exportOutput string
)

var exportCmd = &cobra.Command{
	Use:   "export <dir>",
	Short: "Bundle index.html, style.css and script.js into a single html file",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		code, err := readCodeDir(args[0])
		if err != nil {
			return err
		}

		name := exportName
		if name == "" {
			name = service.DefaultProjectName
		}

		output := exportOutput
		if output == "" {
			output = playground.ExportFileName(name)
		}

		if err := os.WriteFile(output, []byte(playground.ComposeExport(name, code)), 0o644); err != nil {
			return fmt.Errorf("writing %s: %w", output, err)
		}

		log.WithFields(log.Fields{
			"name":   name,
			"output": output,
		}).Info("project exported")

		_, _ = fmt.Fprintln(cmd.OutOrStdout(), output)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(exportCmd)

	exportCmd.Flags().StringVarP(&exportName, "name", "n", "", "project name used as document title and file name")
	exportCmd.Flags().StringVarP(&exportOutput, "out", "o", "", "output file (default: <project-name>.html)")
}

// readCodeDir loads the three buffers from dir, a missing file is an empty buffer
func readCodeDir(dir string) (model.CodeState, error) {
	var code model.CodeState

	info, err := os.Stat(dir)
	if err != nil {
		return code, err
	}
	if !info.IsDir() {
		return code, fmt.Errorf("%s is not a directory", dir)
	}

	buffers := map[string]*string{
		htmlFileName: &code.HTML,
		cssFileName:  &code.CSS,
		jsFileName:   &code.JS,
	}

	for fileName, buffer := range buffers {
		raw, err := os.ReadFile(filepath.Join(dir, fileName))
		if errors.Is(err, fs.ErrNotExist) {
			log.WithField("file", fileName).Debug("file not found, buffer left empty")
			continue
		}
		if err != nil {
			return code, err
		}

		*buffer = string(raw)
	}

	return code, nil
}
