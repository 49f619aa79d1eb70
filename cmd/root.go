package cmd

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strings"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/bimmerbailey/recase/internal/config"
)

var (
	cfgFile string
	envFile string
)

var rootCmd = &cobra.Command{
	Use:   "recase",
	Short: "Transform text without breaking URLs, emails and code",
	Long: `Recase applies one of 170+ named text transformations (case styles,
style guides, encodings, hashes, effects, cleanup and line tools) while
protecting URLs, emails, hashtags, mentions, code and brand names from being
rewritten.

Examples:
  recase transform snake-case "Hello World"
  echo "visit https://Example.com TODAY" | recase transform lower-case
  recase transform title-case --file "docs/*.md" --format json
  recase list --category case
  recase watch kebab-case notes.txt --out notes.kebab.txt
  recase serve --addr :8080`,
	SilenceUsage: true,
}

// Execute is called by main.main(). It runs the root command.
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	cobra.OnInitialize(initConfig)

	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default is $HOME/.recase.yaml)")
	rootCmd.PersistentFlags().StringVar(&envFile, "env-file", ".env", "dotenv file loaded before reading the environment")
	rootCmd.PersistentFlags().StringP("format", "f", "text", "output format (text, json, table, yaml)")
	rootCmd.PersistentFlags().BoolP("verbose", "v", false, "enable verbose output")
	rootCmd.PersistentFlags().String("color", "auto", "colorize output (auto, always, never)")
	rootCmd.PersistentFlags().String("log-level", "info", "log level (debug, info, warn, error)")

	_ = viper.BindPFlag("format", rootCmd.PersistentFlags().Lookup("format"))
	_ = viper.BindPFlag("verbose", rootCmd.PersistentFlags().Lookup("verbose"))
	_ = viper.BindPFlag("color", rootCmd.PersistentFlags().Lookup("color"))
	_ = viper.BindPFlag("log.level", rootCmd.PersistentFlags().Lookup("log-level"))
}

func initConfig() {
	if err := loadEnvFile(envFile); err != nil {
		fmt.Fprintln(os.Stderr, "Error loading env file:", err)
		os.Exit(1)
	}

	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		home, err := os.UserHomeDir()
		if err != nil {
			fmt.Fprintln(os.Stderr, "Error finding home directory:", err)
			os.Exit(1)
		}

		viper.AddConfigPath(home)
		viper.AddConfigPath(".")
		viper.SetConfigName(".recase")
		viper.SetConfigType("yaml")
	}

	viper.SetEnvPrefix("RECASE")
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	viper.AutomaticEnv()

	setDefaults(viper.GetViper(), config.Default())

	if err := viper.ReadInConfig(); err == nil {
		if viper.GetBool("verbose") {
			fmt.Fprintln(os.Stderr, "Using config file:", viper.ConfigFileUsed())
		}
	} else {
		var notFound viper.ConfigFileNotFoundError
		if cfgFile != "" || !errors.As(err, &notFound) {
			fmt.Fprintln(os.Stderr, "Error reading config file:", err)
			os.Exit(1)
		}
	}
}

// loadEnvFile loads path into the process environment without overriding
// variables that are already set. A missing file is not an error.
func loadEnvFile(path string) error {
	if path == "" {
		return nil
	}
	err := godotenv.Load(path)
	if errors.Is(err, fs.ErrNotExist) {
		return nil
	}
	return err
}

// setDefaults registers every key so that AutomaticEnv can resolve
// RECASE_* variables for keys absent from the config file.
func setDefaults(v *viper.Viper, d config.Config) {
	v.SetDefault("format", d.Format)
	v.SetDefault("verbose", d.Verbose)
	v.SetDefault("color", "auto")
	v.SetDefault("log.level", d.Log.Level)
	v.SetDefault("log.json", d.Log.JSON)

	v.SetDefault("limits.large_bytes", d.Limits.LargeBytes)
	v.SetDefault("limits.max_bytes", d.Limits.MaxBytes)

	p := d.Preservation
	v.SetDefault("preservation.urls", p.URLs)
	v.SetDefault("preservation.emails", p.Emails)
	v.SetDefault("preservation.hashtags", p.Hashtags)
	v.SetDefault("preservation.mentions", p.Mentions)
	v.SetDefault("preservation.code_blocks", p.CodeBlocks)
	v.SetDefault("preservation.markdown", p.Markdown)
	v.SetDefault("preservation.brands", p.Brands)
	v.SetDefault("preservation.brand_names", p.BrandNames)
	v.SetDefault("preservation.file_paths", p.FilePaths)

	v.SetDefault("style.provider", d.Style.Provider)
	v.SetDefault("style.fallback", d.Style.Fallback)
	v.SetDefault("llm.temperature", d.LLM.Temperature)
	v.SetDefault("llm.max_tokens", d.LLM.MaxTokens)
	v.SetDefault("llm.ollama.host", d.LLM.Ollama.Host)
	v.SetDefault("llm.ollama.model", d.LLM.Ollama.Model)
	v.SetDefault("llm.ollama.keep_alive", d.LLM.Ollama.KeepAlive)
	v.SetDefault("llm.ollama.num_ctx", d.LLM.Ollama.NumCtx)

	v.SetDefault("server.addr", d.Server.Addr)
	v.SetDefault("server.read_timeout", d.Server.ReadTimeout)
	v.SetDefault("server.write_timeout", d.Server.WriteTimeout)
	v.SetDefault("server.workers", d.Server.Workers)

	v.SetDefault("kafka.enabled", d.Kafka.Enabled)
	v.SetDefault("kafka.brokers", d.Kafka.Brokers)
	v.SetDefault("kafka.topic", d.Kafka.Topic)
	v.SetDefault("kafka.client_id", d.Kafka.ClientID)
}
