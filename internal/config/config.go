package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/spf13/viper"
)

var (
	ErrMissingSetting = errors.New("required setting is missing")
	ErrInvalidSetting = errors.New("setting has an invalid value")
)

const defaultConfigPath = ".env"

type Config struct {
	Env     string        // Env is the current environment: local, development, production.
	Input   InputConfig   // Input holds the payroll sheet location
	Output  OutputConfig  // Output holds where and how payslips are written
	SMTP    SMTPConfig    // SMTP holds the mail transport settings, all four main fields are required
	Metrics MetricsConfig // Metrics holds the optional Pushgateway settings
}

// InputConfig struct holds the location of the payroll sheet.
type InputConfig struct {
	Path string // Path is the spreadsheet to read, xlsx, xls or csv.
}

// OutputConfig struct holds the payslip output settings.
type OutputConfig struct {
	Dir             string // Dir is created on demand.
	IssuerName      string // IssuerName is printed in the payslip header and signs the mail body.
	DuplicatePolicy string // DuplicatePolicy decides what happens when two employees share a name.
	SummaryPath     string // SummaryPath is the batch summary CSV, empty disables the report.
}

// SMTPConfig struct holds the configuration details for the outgoing mail server.
type SMTPConfig struct {
	Host               string // Host is the SMTP server address.
	Port               int    // Port is the SMTP server port.
	Sender             string // Sender is the From address, also used as the login.
	Password           string // Password is the sender credential.
	SSL                bool   // SSL enables implicit TLS, usually on port 465.
	InsecureSkipVerify bool   // InsecureSkipVerify disables server certificate checks.
}

// MetricsConfig struct holds the Pushgateway settings.
type MetricsConfig struct {
	PushgatewayURL string // PushgatewayURL is empty when metrics are not pushed.
	Job            string
}

// MustLoad loads the configuration from the environment and an optional dotenv file
// and returns a Config struct. It panics when the configuration is invalid.
func MustLoad() *Config {
	configPath := os.Getenv("CONFIG_PATH")
	explicit := configPath != ""
	if !explicit {
		configPath = defaultConfigPath
	}

	// check if file exists
	if _, err := os.Stat(configPath); os.IsNotExist(err) {
		if explicit {
			panic("config file does not exist: " + configPath)
		}
		configPath = ""
	}

	cfg, err := Load(configPath)
	if err != nil {
		panic("config error: " + err.Error())
	}

	return cfg
}

// Load reads the settings from the environment, falling back to the dotenv file at path
// when it is not empty, and validates the result.
func Load(path string) (*Config, error) {
	vpr := viper.New()
	vpr.AutomaticEnv()

	vpr.SetDefault("env", "local")
	vpr.SetDefault("input_path", "employees.xlsx")
	vpr.SetDefault("output_dir", "payslips")
	vpr.SetDefault("issuer_name", "Mitchell Mukwaruwa")
	vpr.SetDefault("duplicate_policy", "overwrite")
	vpr.SetDefault("summary_path", "payslips/batch_summary.csv")
	vpr.SetDefault("pushgateway_job", "plutus_payslips")

	if path != "" {
		vpr.SetConfigFile(path)
		vpr.SetConfigType("env")
		if err := vpr.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("failed to read config file '%s': %w", path, err)
		}
	}

	cfg := &Config{
		Env: vpr.GetString("env"),
		Input: InputConfig{
			Path: vpr.GetString("input_path"),
		},
		Output: OutputConfig{
			Dir:             vpr.GetString("output_dir"),
			IssuerName:      vpr.GetString("issuer_name"),
			DuplicatePolicy: vpr.GetString("duplicate_policy"),
			SummaryPath:     vpr.GetString("summary_path"),
		},
		SMTP: SMTPConfig{
			Host:               strings.TrimSpace(vpr.GetString("smtp_server")),
			Sender:             strings.TrimSpace(vpr.GetString("email_address")),
			Password:           vpr.GetString("email_password"),
			SSL:                vpr.GetBool("smtp_ssl"),
			InsecureSkipVerify: vpr.GetBool("smtp_insecure_skip_verify"),
		},
		Metrics: MetricsConfig{
			PushgatewayURL: vpr.GetString("pushgateway_url"),
			Job:            vpr.GetString("pushgateway_job"),
		},
	}

	var portErr error
	cfg.SMTP.Port, portErr = parsePort(vpr.GetString("smtp_port"))

	if portErr != nil {
		return nil, errors.Join(portErr, cfg.validateRequired())
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// Validate reports every missing or invalid setting at once.
func (c *Config) Validate() error {
	return errors.Join(c.validateRequired(), c.validatePort())
}

func (c *Config) validateRequired() error {
	var errs []error

	required := []struct {
		key   string
		value string
	}{
		{"SMTP_SERVER", c.SMTP.Host},
		{"EMAIL_ADDRESS", c.SMTP.Sender},
		{"EMAIL_PASSWORD", c.SMTP.Password},
		{"INPUT_PATH", c.Input.Path},
		{"OUTPUT_DIR", c.Output.Dir},
	}
	for _, setting := range required {
		if setting.value == "" {
			errs = append(errs, fmt.Errorf("%w: %s", ErrMissingSetting, setting.key))
		}
	}

	return errors.Join(errs...)
}

func (c *Config) validatePort() error {
	const maxPort = 65535
	switch {
	case c.SMTP.Port == 0:
		return fmt.Errorf("%w: SMTP_PORT", ErrMissingSetting)
	case c.SMTP.Port < 0 || c.SMTP.Port > maxPort:
		return fmt.Errorf("%w: SMTP_PORT=%d", ErrInvalidSetting, c.SMTP.Port)
	}

	return nil
}

func parsePort(raw string) (int, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return 0, nil
	}

	port, err := strconv.Atoi(raw)
	if err != nil {
		return 0, fmt.Errorf("%w: SMTP_PORT=%q", ErrInvalidSetting, raw)
	}

	return port, nil
}
