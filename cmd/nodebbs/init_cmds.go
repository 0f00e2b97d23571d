package main

import (
	"bytes"
	"fmt"
	"os"
	"regexp"
	"strconv"
	"strings"
	"text/template"

	"github.com/charmbracelet/huh"
	"github.com/spf13/cobra"

	"nodebbs/internal/assets"
)

var initCmd = &cobra.Command{
	Use:   "init [config_name]",
	Short: "Initialize a new board configuration",
	Long:  "Creates a new configuration file and directory structure for a board, prompting for details.",
	Args:  cobra.MaximumNArgs(1),
	RunE:  runInit,
}

type ConfigTemplateData struct {
	BoardName       string
	PrettyBoardName string
	Description     string
	Hostname        string
	Website         string
	TelnetPort      int
	BinaryMode      bool
}

var unsafeFilenameChars = regexp.MustCompile(`[^a-z0-9_-]`)

func runInit(cmd *cobra.Command, args []string) error {
	configName := "config"
	if len(args) > 0 {
		configName = args[0]
	}
	safeName := sanitizeFilename(configName)

	data := ConfigTemplateData{BinaryMode: true}
	port := "2323"

	form := huh.NewForm(
		huh.NewGroup(
			huh.NewInput().Title("Board Name").Value(&data.BoardName),
			huh.NewInput().Title("Pretty Board Name").Description("Displayed in banners").Value(&data.PrettyBoardName),
			huh.NewInput().Title("Description").Value(&data.Description),
			huh.NewInput().Title("Hostname").Value(&data.Hostname),
			huh.NewInput().Title("Website").Value(&data.Website),
		),
		huh.NewGroup(
			huh.NewInput().
				Title("Telnet Port").
				Value(&port).
				Validate(func(s string) error {
					n, err := strconv.Atoi(s)
					if err != nil || n < 1 || n > 65535 {
						return fmt.Errorf("port must be between 1 and 65535")
					}
					return nil
				}),
			huh.NewConfirm().
				Title("Binary telnet (8-bit CP437 art)?").
				Description("Recommended for SyncTERM, NetRunner and other BBS terminals").
				Value(&data.BinaryMode),
		),
	)
	if err := form.Run(); err != nil {
		return err
	}
	data.TelnetPort, _ = strconv.Atoi(port)

	configFile := safeName + ".yml"
	fmt.Printf("Initializing '%s' (config: %s)...\n", data.BoardName, configFile)

	for _, dir := range []string{"data", "keys", "logs", "art"} {
		path := safeName + "/" + dir
		if err := os.MkdirAll(path, 0o755); err != nil {
			return fmt.Errorf("creating directory %s: %w", path, err)
		}
		fmt.Printf("Created directory: %s\n", path)
	}

	// The views are optional; a board can start without them
	if views, err := assets.FS.ReadFile("views.yml"); err != nil {
		fmt.Printf("Error reading embedded views template: %v\n", err)
	} else if err := os.WriteFile("views.yml", views, 0o644); err != nil {
		fmt.Printf("Error writing views file: %v\n", err)
	} else {
		fmt.Println("Created views file: views.yml")
	}

	rendered, err := renderConfig(safeName, data)
	if err != nil {
		return err
	}
	if err := os.WriteFile(configFile, rendered, 0o644); err != nil {
		return fmt.Errorf("writing config file %s: %w", configFile, err)
	}

	fmt.Printf("Configuration file created: %s\n", configFile)
	fmt.Println("Initialization complete.")
	return nil
}

func renderConfig(safeName string, data ConfigTemplateData) ([]byte, error) {
	raw, err := assets.FS.ReadFile("config.yml")
	if err != nil {
		return nil, fmt.Errorf("reading embedded config template: %w", err)
	}

	// Point the paths at the directories created for this board
	text := strings.ReplaceAll(string(raw), "config/", safeName+"/")

	tmpl, err := template.New("config").Parse(text)
	if err != nil {
		return nil, fmt.Errorf("parsing config template: %w", err)
	}

	var buf bytes.Buffer
	if err := tmpl.Execute(&buf, data); err != nil {
		return nil, fmt.Errorf("executing config template: %w", err)
	}
	return buf.Bytes(), nil
}

func sanitizeFilename(name string) string {
	name = strings.ToLower(name)
	name = strings.ReplaceAll(name, " ", "_")
	return unsafeFilenameChars.ReplaceAllString(name, "")
}
