// genpasswd prints random passwords, optionally resetting an LDAP account to
// the generated value.
package main

import (
	"fmt"
	"log/slog"
	"os"

	kingpin "github.com/alecthomas/kingpin/v2"
	"github.com/prometheus/common/version"

	"gridtools/config"
	ldapc "gridtools/internal/pkg/client/ldap"
	"gridtools/internal/pkg/passwd"
)

func main() {
	var (
		lengthFlag = kingpin.Flag("length", "Password length").Short('l').Default("12").Int()
		countFlag  = kingpin.Flag("count", "How many passwords to generate").Short('n').Default("1").Int()
		ldapUser   = kingpin.Flag("ldap-user", "Reset this LDAP account to the generated password").String()
		configFile = kingpin.Flag("config", "Path to YAML config file").Short('c').Envar("GRIDTOOLS_CONFIG").String()
	)
	kingpin.Version(version.Print("genpasswd"))
	kingpin.HelpFlag.Short('h')
	kingpin.Parse()

	logger := slog.New(slog.NewTextHandler(os.Stderr, nil))

	if *ldapUser != "" {
		if *countFlag != 1 {
			kingpin.Fatalf("--ldap-user resets one account, --count must be 1")
		}
		if *configFile == "" {
			kingpin.Fatalf("--ldap-user requires --config with an ldap section")
		}
		cfg, err := config.Load(*configFile)
		if err != nil {
			logger.Error("failed to load config", slog.String("path", *configFile), slog.Any("err", err))
			os.Exit(1)
		}
		p, err := passwd.Generate(*lengthFlag)
		if err != nil {
			kingpin.Fatalf("%v", err)
		}
		lcli, err := ldapc.New(cfg.LDAP)
		if err != nil {
			logger.Error("failed to connect to ldap", slog.Any("err", err))
			os.Exit(1)
		}
		defer lcli.Close()
		if err := lcli.SetUserPassword(*ldapUser, p); err != nil {
			logger.Error("failed to reset password", slog.String("user", *ldapUser), slog.Any("err", err))
			os.Exit(1)
		}
		fmt.Printf("%s\n", p)
		logger.Info("password reset", slog.String("user", *ldapUser))
		return
	}

	for i := 0; i < *countFlag; i++ {
		p, err := passwd.Generate(*lengthFlag)
		if err != nil {
			kingpin.Fatalf("%v", err)
		}
		fmt.Println(p)
	}
}
