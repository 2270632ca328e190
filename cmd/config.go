package cmd

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/mattn/go-isatty"
	"github.com/spf13/cobra"
	"github.com/sungit/sungit/internal/config"
	"github.com/sungit/sungit/internal/llm"
	"golang.org/x/term"
)

var (
	configCmd = &cobra.Command{
		Use:   "config",
		Short: "Manage sungit configuration",
		Long:  `Manage sungit configuration: API key, model, base URL, role, and triggers.`,
	}

	configSetCmd = &cobra.Command{
		Use:   "set",
		Short: "Set a configuration value",
	}

	configSetRoleCmd = &cobra.Command{
		Use:   "role [name]",
		Short: "Set the role used in commit message prompts",
		Args:  cobra.ExactArgs(1),
		RunE: func(_ *cobra.Command, args []string) error {
			role := args[0]
			if !config.IsValidRole(role) {
				return fmt.Errorf("invalid role: %s", role)
			}
			if err := saveValue("role", role); err != nil {
				return err
			}
			fmt.Fprintf(outWriter(), "Role set to: %s\n", role)
			fmt.Fprintln(outWriter(), "Hint: any role name works, suggestions:")
			for _, r := range config.GetSuggestedRoles() {
				fmt.Fprintf(outWriter(), "- %s\n", r)
			}
			return nil
		},
	}

	configSetModelCmd = &cobra.Command{
		Use:   "model [name]",
		Short: "Set the LLM model",
		Args:  cobra.ExactArgs(1),
		RunE: func(_ *cobra.Command, args []string) error {
			model := args[0]
			if !config.IsValidModel(model) {
				return fmt.Errorf("invalid model: %s", model)
			}
			if err := saveValue("model", model); err != nil {
				return err
			}
			fmt.Fprintf(outWriter(), "Model set to: %s\n", model)
			return nil
		},
	}

	configSetAPIKeyCmd = &cobra.Command{
		Use:   "apikey [key]",
		Short: "Set the API key (prompts without echo when no argument is given)",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(_ *cobra.Command, args []string) error {
			var apiKey string
			if len(args) == 1 {
				apiKey = args[0]
			} else {
				var err error
				apiKey, err = readSecret("API key: ")
				if err != nil {
					return err
				}
			}
			if strings.TrimSpace(apiKey) == "" {
				return errors.New("API key cannot be empty")
			}
			if err := saveValue("api_key", apiKey); err != nil {
				return err
			}
			fmt.Fprintln(outWriter(), "API key saved")
			return nil
		},
	}

	configSetAPIBaseCmd = &cobra.Command{
		Use:   "apibase [url]",
		Short: "Set the API base URL for OpenAI-compatible endpoints",
		Args:  cobra.ExactArgs(1),
		RunE: func(_ *cobra.Command, args []string) error {
			if err := saveValue("api_base", args[0]); err != nil {
				return err
			}
			fmt.Fprintf(outWriter(), "API base URL set to: %s\n", args[0])
			return nil
		},
	}

	configGetCmd = &cobra.Command{
		Use:   "get",
		Short: "Show the current configuration",
		RunE: func(_ *cobra.Command, _ []string) error {
			cfg, err := config.GetConfig()
			if err != nil {
				return err
			}
			fmt.Fprintln(outWriter(), "Current configuration:")
			fmt.Fprintf(outWriter(), "Role: %s\n", cfg.Role)
			fmt.Fprintf(outWriter(), "Model: %s\n", cfg.Model)
			fmt.Fprintf(outWriter(), "API key: %s\n", maskKey(cfg.APIKey))
			if cfg.APIBase != "" {
				fmt.Fprintf(outWriter(), "API base: %s\n", cfg.APIBase)
			}
			fmt.Fprintf(outWriter(), "Prompt template: %s\n", cfg.PromptTemplate)
			fmt.Fprintf(outWriter(), "Git timeout: %ds\n", cfg.GitTimeout)
			fmt.Fprintf(outWriter(), "Max diff lines: %d\n", cfg.MaxDiffLines)
			if len(cfg.Triggers) > 0 {
				fmt.Fprintf(outWriter(), "Extra triggers: %s\n", strings.Join(cfg.Triggers, ", "))
			}
			return nil
		},
	}

	configTestCmd = &cobra.Command{
		Use:   "test",
		Short: "Test the LLM connection",
		RunE: func(_ *cobra.Command, _ []string) error {
			cfg, err := config.GetConfig()
			if err != nil {
				return err
			}
			fmt.Fprintln(outWriter(), "Testing API connection...")
			client := llm.NewClient(llm.Options{Timeout: 15 * time.Second})
			if err := client.TestConnection(cfg.Model); err != nil {
				return fmt.Errorf("connection test failed: %w", err)
			}
			fmt.Fprintln(outWriter(), "Connection test succeeded.")
			return nil
		},
	}
)

func init() {
	configSetCmd.AddCommand(configSetRoleCmd, configSetModelCmd, configSetAPIKeyCmd, configSetAPIBaseCmd)
	configCmd.AddCommand(configSetCmd, configGetCmd, configTestCmd)
}

func saveValue(key string, value any) error {
	config.SetConfigValue(key, value)
	if err := config.SaveConfig(); err != nil {
		return fmt.Errorf("failed to save configuration: %w", err)
	}
	return nil
}

// readSecret reads a line without echo on a terminal, falling back to a
// plain read when stdin is piped.
func readSecret(prompt string) (string, error) {
	fmt.Fprint(errWriter(), prompt)
	fd := int(os.Stdin.Fd())
	if isatty.IsTerminal(os.Stdin.Fd()) {
		secret, err := term.ReadPassword(fd)
		fmt.Fprintln(errWriter())
		if err != nil {
			return "", fmt.Errorf("failed to read secret: %w", err)
		}
		return strings.TrimSpace(string(secret)), nil
	}

	var line string
	if _, err := fmt.Fscanln(os.Stdin, &line); err != nil {
		return "", fmt.Errorf("failed to read secret: %w", err)
	}
	return strings.TrimSpace(line), nil
}

func maskKey(key string) string {
	if key == "" {
		return "<not set>"
	}
	if len(key) <= 8 {
		return "********"
	}
	return key[:4] + "..." + key[len(key)-4:]
}
