package config

import (
    "os"

    "github.com/go-playground/validator/v10"
    "gopkg.in/yaml.v3"
)

type Config struct {
    GridEngine GridEngine `yaml:"gridengine"`
    Warranty   Warranty   `yaml:"warranty"`
    Inventory  Inventory  `yaml:"inventory"`
    LDAP       LDAP       `yaml:"ldap"`
}

// GridEngine configures how the scheduler CLI is invoked.
type GridEngine struct {
    QstatPath      string `yaml:"qstatPath"`
    CommandTimeout string `yaml:"commandTimeout"`
}

// Warranty configures the vendor support-page lookup.
type Warranty struct {
    BaseURL     string `yaml:"baseURL" validate:"omitempty,url"`
    HTTPTimeout string `yaml:"httpTimeout"`
}

type Inventory struct {
    Host            string `yaml:"host"`
    Port            int    `yaml:"port" validate:"omitempty,gte=1,lte=65535"`
    User            string `yaml:"user"`
    Password        string `yaml:"password"`
    Database        string `yaml:"database"`
    Charset         string `yaml:"charset"`
    ParseTime       bool   `yaml:"parseTime"`
    Loc             string `yaml:"loc"`
    TLS             string `yaml:"tls"`
    MaxOpenConns    int    `yaml:"maxOpenConns"`
    MaxIdleConns    int    `yaml:"maxIdleConns"`
    ConnMaxLifetime string `yaml:"connMaxLifetime"`
}

type LDAP struct {
    Host               string `yaml:"host"`
    Port               int    `yaml:"port" validate:"omitempty,gte=1,lte=65535"`
    UseTLS             bool   `yaml:"useTLS"`
    StartTLS           bool   `yaml:"startTLS"`
    InsecureSkipVerify bool   `yaml:"insecureSkipVerify"`
    ServerName         string `yaml:"serverName"`
    RootCAFile         string `yaml:"rootCAFile"`
    ClientCertFile     string `yaml:"clientCertFile"`
    ClientKeyFile      string `yaml:"clientKeyFile"`
    BindDN             string `yaml:"bindDN"`
    BindPassword       string `yaml:"bindPassword"`
    BaseDN             string `yaml:"baseDN"`
    ConnectTimeout     string `yaml:"connectTimeout"`
    ReadTimeout        string `yaml:"readTimeout"`
}

// Default returns the configuration used when no config file is given.
// The CLI tools must keep working on a bare cluster login node.
func Default() *Config {
    return &Config{
        GridEngine: GridEngine{
            QstatPath:      "qstat",
            CommandTimeout: "30s",
        },
        Warranty: Warranty{
            BaseURL:     "https://www.dell.com/support/home/en-us/product-support/servicetag",
            HTTPTimeout: "30s",
        },
    }
}

// Load reads a YAML config file from the given path and unmarshals into Config.
// Fields absent from the file keep their Default() values.
func Load(path string) (*Config, error) {
    b, err := os.ReadFile(path)
    if err != nil {
        return nil, err
    }
    cfg := Default()
    if err := yaml.Unmarshal(b, cfg); err != nil {
        return nil, err
    }
    if err := cfg.Validate(); err != nil {
        return nil, err
    }
    return cfg, nil
}

// Validate checks field constraints using go-playground/validator.
func (c *Config) Validate() error {
    v := validator.New(validator.WithRequiredStructEnabled())
    return v.Struct(c)
}
