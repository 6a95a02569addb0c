package cmd

import (
	"fmt"
	"log"
	"os"
	"strings"
	"time"

	"github.com/bnonni/tool5/agent/utils"
	"github.com/bnonni/tool5/cmds"
	"github.com/golang/glog"
	"github.com/lainio/err2"
	"github.com/lainio/err2/try"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

const envPrefix = "TOOL5"

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Version: utils.Version,
	Use:     utils.Name,
	Short:   "Decentralized identity cli tool",
	Long: `
Decentralized identity cli tool: DIDs, verifiable credentials,
decentralized web node records and the local user agent.

Everything the tool writes goes under the tool home, $TOOL5_HOME or
~/.tool5 by default.
	`,
	SilenceUsage: true,
	PersistentPreRun: func(cmd *cobra.Command, _ []string) {
		cmds.ParseLoggingArgs(rootFlags.logging)
		handleViperFlags(cmd)
		utils.Settings.SetHome(rootFlags.home)
		utils.Settings.SetTimeout(rootFlags.timeout)
		if rootFlags.endpoint != "" {
			utils.Settings.SetEndpoint(rootFlags.endpoint)
		}
		if rootFlags.gateway != "" {
			utils.Settings.SetGateway(rootFlags.gateway)
		}
		utils.Settings.SetVersionInfo(utils.VersionInfo())
	},
}

// Execute root
func Execute() {
	rootCmd.SilenceErrors = true
	if err := rootCmd.Execute(); err != nil {
		glog.Errorln(err)
		glog.Flush()
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
	glog.Flush()
}

// RootCmd returns a current root command which can be used for adding own
// commands in an own repo.
//
//	implCmd.AddCommand(listCmd)
func RootCmd() *cobra.Command {
	return rootCmd
}

// DryRun returns a value of a dry run flag.
func DryRun() bool {
	return rootFlags.dryRun
}

// RootFlags are the common flags
type RootFlags struct {
	cfgFile       string
	dryRun        bool
	logging       string
	home          string
	agentPath     string
	agentPassword string
	timeout       time.Duration
	endpoint      string
	gateway       string
}

var rootFlags = RootFlags{}

var rootEnvs = map[string]string{
	"config":           "CONFIG",
	"logging":          "LOGGING",
	"dry-run":          "DRY_RUN",
	"home":             "HOME",
	"agent-path":       "AGENT_STORE_PATH",
	"agent-password":   "AGENT_STORE_PASSWORD",
	"timeout":          "TIMEOUT",
	"default-endpoint": "DEFAULT_ENDPOINT",
	"default-gateway":  "DEFAULT_GATEWAY",
}

func init() {
	defer err2.Catch(func(err error) error {
		log.Println(err)
		return nil
	})

	cobra.OnInitialize(initConfig)

	flags := rootCmd.PersistentFlags()
	flags.StringVar(&rootFlags.cfgFile, "config", "", flagInfo("configuration file", "", rootEnvs["config"]))
	flags.StringVar(&rootFlags.logging, "logging", "-logtostderr=true -v=2", flagInfo("logging startup arguments", "", rootEnvs["logging"]))
	flags.BoolVarP(&rootFlags.dryRun, "dry-run", "n", false, flagInfo("perform a trial run with no changes made", "", rootEnvs["dry-run"]))
	flags.StringVar(&rootFlags.home, "home", "", flagInfo("tool home directory, default ~/.tool5", "", rootEnvs["home"]))
	flags.StringVar(&rootFlags.agentPath, "agent-path", "", flagInfo("agent data path, default <home>/agent", "", rootEnvs["agent-path"]))
	flags.StringVar(&rootFlags.agentPassword, "agent-password", "", flagInfo("agent password", "", rootEnvs["agent-password"]))
	flags.DurationVar(&rootFlags.timeout, "timeout", utils.HTTPReqTimeout, flagInfo("timeout of a single network call", "", rootEnvs["timeout"]))
	flags.StringVar(&rootFlags.endpoint, "default-endpoint", "", flagInfo("DWN endpoint used when a command gives none", "", rootEnvs["default-endpoint"]))
	flags.StringVar(&rootFlags.gateway, "default-gateway", "", flagInfo("DHT gateway used when a command gives none", "", rootEnvs["default-gateway"]))

	for key := range rootEnvs {
		if key == "config" {
			continue
		}
		try.To(viper.BindPFlag(key, flags.Lookup(key)))
	}
	try.To(BindEnvs(rootEnvs, ""))
}

func initConfig() {
	viper.SetEnvPrefix(envPrefix)
	replacer := strings.NewReplacer("-", "_")
	viper.SetEnvKeyReplacer(replacer)
	readConfigFile()
	readBoundRootFlags()
}

func readBoundRootFlags() {
	rootFlags.logging = viper.GetString("logging")
	rootFlags.dryRun = viper.GetBool("dry-run")
	rootFlags.home = viper.GetString("home")
	rootFlags.agentPath = viper.GetString("agent-path")
	rootFlags.agentPassword = viper.GetString("agent-password")
	rootFlags.timeout = viper.GetDuration("timeout")
	rootFlags.endpoint = viper.GetString("default-endpoint")
	rootFlags.gateway = viper.GetString("default-gateway")
}

func readConfigFile() {
	cfgEnv := os.Getenv(getEnvName("", "config"))
	if rootFlags.cfgFile != "" || cfgEnv != "" {
		printInfo := true
		if rootFlags.cfgFile == "" {
			rootFlags.cfgFile = cfgEnv
			printInfo = false
		}
		viper.SetConfigFile(rootFlags.cfgFile)
		// If a config file is found, read it in.
		if err := viper.ReadInConfig(); err == nil && printInfo {
			glog.V(1).Infoln("using config file:", viper.ConfigFileUsed())
		}
	}
}

// BindEnvs calls viper.BindEnv with envMap and cmdName which can be empty if
// flag is general.
func BindEnvs(envMap map[string]string, cmdName string) (err error) {
	defer err2.Handle(&err, nil)
	for flagKey, envName := range envMap {
		finalEnvName := getEnvName(cmdName, envName)
		try.To(viper.BindEnv(flagKey, finalEnvName))
	}
	return nil
}

func flagInfo(info, cmdPrefix, envName string) string {
	return info + ", " + getEnvName(cmdPrefix, envName)
}

func getEnvName(cmdName, envName string) string {
	if cmdName == "" {
		return envPrefix + "_" + strings.ToUpper(envName)
	}
	return envPrefix + "_" + strings.ToUpper(cmdName) + "_" + envName
}

func handleViperFlags(cmd *cobra.Command) {
	setRequiredStringFlags(cmd)
	if cmd.HasParent() {
		handleViperFlags(cmd.Parent())
	}
}

func setRequiredStringFlags(cmd *cobra.Command) {
	defer err2.Catch(func(err error) error {
		log.Println(err)
		return nil
	})

	try.To(viper.BindPFlags(cmd.LocalFlags()))
	if cmd.PreRunE != nil {
		try.To(cmd.PreRunE(cmd, nil))
	}
	cmd.LocalFlags().VisitAll(func(f *pflag.Flag) {
		if viper.GetString(f.Name) != "" {
			try.To(cmd.LocalFlags().Set(f.Name, viper.GetString(f.Name)))
		}
	})
}

// newEnv returns the context of a command invocation from the root flags.
func newEnv() *cmds.Env {
	return &cmds.Env{
		Home:          utils.Settings.Home(),
		AgentPath:     rootFlags.agentPath,
		AgentPassword: rootFlags.agentPassword,
	}
}

// execCmd validates the command and executes it unless it's a dry run.
func execCmd(c cmds.Command) (err error) {
	defer err2.Handle(&err, nil)

	try.To(c.Validate())
	if rootFlags.dryRun {
		glog.V(1).Infoln("dry run, command validated")
		return nil
	}
	try.To1(c.Exec(os.Stdout))
	return nil
}
