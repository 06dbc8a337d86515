package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/chzyer/readline"
	"github.com/kardolus/settings-store/cmd/settings/utils"
	"github.com/kardolus/settings-store/config"
	"github.com/kardolus/settings-store/internal"
	"github.com/kardolus/settings-store/settings"
	"github.com/kardolus/settings-store/types"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

const fileEnv = "SETTINGS_FILE"

var (
	settingsFile string
	verbose      bool
	jsonPayload  string

	manager *settings.Manager
)

func main() {
	rootCmd := &cobra.Command{
		Use:              "settings",
		Short:            "Manage a shared JSON settings file",
		Long:             "A thread- and process-safe manager for a JSON settings file shared between tools.",
		PersistentPreRun: setup,
	}

	rootCmd.PersistentFlags().StringVarP(&settingsFile, "file", "f", "", "path to the settings file")
	rootCmd.PersistentFlags().BoolVar(&verbose, "verbose", false, "enable debug logging")

	viper.AutomaticEnv()

	listCmd := &cobra.Command{
		Use:   "list",
		Short: "List the ids of all settings records",
		RunE:  runList,
	}

	getCmd := &cobra.Command{
		Use:   "get <id>",
		Short: "Print one settings record as JSON",
		Args:  cobra.ExactArgs(1),
		RunE:  runGet,
	}

	setCmd := &cobra.Command{
		Use:   "set <id> [key=value...]",
		Short: "Create or replace a settings record",
		Args:  cobra.MinimumNArgs(1),
		RunE:  runSet,
	}
	setCmd.Flags().StringVar(&jsonPayload, "json", "", "raw JSON object to store instead of key=value pairs")

	deleteCmd := &cobra.Command{
		Use:   "delete <id>",
		Short: "Remove all settings records with the given id",
		Args:  cobra.ExactArgs(1),
		RunE:  runDelete,
	}

	showCmd := &cobra.Command{
		Use:   "show",
		Short: "Print the whole settings file",
		RunE:  runShow,
	}

	configCmd := &cobra.Command{
		Use:   "config",
		Short: "Print the effective tool configuration",
		RunE:  runConfig,
	}

	shellCmd := &cobra.Command{
		Use:   "shell",
		Short: "Interactive settings shell",
		RunE:  runShell,
	}

	rootCmd.AddCommand(listCmd, getCmd, setCmd, deleteCmd, showCmd, configCmd, shellCmd)

	if err := rootCmd.Execute(); err != nil {
		fmt.Println(err)
		os.Exit(1)
	}
}

func setup(_ *cobra.Command, _ []string) {
	cfg := config.NewManager(config.New()).WithEnvironment().Config

	internal.InitLogger(verbose || cfg.Verbose)

	path := cfg.SettingsPath
	if env := viper.GetString(fileEnv); env != "" {
		path = env
	}
	if settingsFile != "" {
		path = settingsFile
	}

	store := settings.GetInstance().
		WithRetryPolicy(cfg.LockMaxRetries, time.Duration(cfg.LockRetryDelayMS)*time.Millisecond)

	manager = settings.NewManager(store, path)
}

func runList(_ *cobra.Command, _ []string) error {
	ids, err := manager.List()
	if err != nil {
		return err
	}

	for _, id := range ids {
		fmt.Println(id)
	}

	return nil
}

func runGet(_ *cobra.Command, args []string) error {
	record, found, err := manager.Get(args[0])
	if err != nil {
		return err
	}
	if !found {
		return fmt.Errorf("no settings record with id %q", args[0])
	}

	data, err := json.MarshalIndent(record, "", "    ")
	if err != nil {
		return err
	}
	fmt.Println(string(data))

	return nil
}

func runSet(_ *cobra.Command, args []string) error {
	record, err := buildRecord(args[1:])
	if err != nil {
		return err
	}

	return manager.Set(args[0], record)
}

func runDelete(_ *cobra.Command, args []string) error {
	return manager.Remove(args[0])
}

func runShow(_ *cobra.Command, _ []string) error {
	result, err := manager.Show()
	if err != nil {
		return err
	}
	fmt.Println(result)

	return nil
}

func runConfig(_ *cobra.Command, _ []string) error {
	result, err := config.NewManager(config.New()).WithEnvironment().ShowConfig()
	if err != nil {
		return err
	}
	fmt.Print(result)

	return nil
}

func runShell(_ *cobra.Command, _ []string) error {
	rl, err := readline.New("settings> ")
	if err != nil {
		return err
	}
	defer rl.Close()

	for {
		line, err := rl.Readline()
		if errors.Is(err, readline.ErrInterrupt) || errors.Is(err, io.EOF) {
			return nil
		}
		if err != nil {
			return err
		}

		if err := dispatch(strings.Fields(line)); err != nil {
			if errors.Is(err, errQuit) {
				return nil
			}
			fmt.Println(err)
		}
	}
}

var errQuit = errors.New("quit")

func dispatch(fields []string) error {
	if len(fields) == 0 {
		return nil
	}

	switch cmd, args := fields[0], fields[1:]; cmd {
	case "list":
		return runList(nil, nil)
	case "get":
		if len(args) != 1 {
			return errors.New("usage: get <id>")
		}
		return runGet(nil, args)
	case "set":
		if len(args) < 1 {
			return errors.New("usage: set <id> [key=value...]")
		}
		return runSet(nil, args)
	case "delete":
		if len(args) != 1 {
			return errors.New("usage: delete <id>")
		}
		return runDelete(nil, args)
	case "show":
		return runShow(nil, nil)
	case "exit", "quit":
		return errQuit
	default:
		return fmt.Errorf("unknown command %q", cmd)
	}
}

func buildRecord(args []string) (types.Record, error) {
	if jsonPayload != "" {
		var record types.Record
		if err := json.Unmarshal([]byte(jsonPayload), &record); err != nil {
			return nil, fmt.Errorf("invalid --json payload: %w", err)
		}
		return record, nil
	}

	return utils.ParseAssignments(args)
}
