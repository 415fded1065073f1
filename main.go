package main

import (
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/editalgen/editalgen/caching"
	"github.com/editalgen/editalgen/clause"
	"github.com/editalgen/editalgen/config"
	"github.com/editalgen/editalgen/database"
	"github.com/editalgen/editalgen/docx"
	"github.com/editalgen/editalgen/logger"
	"github.com/editalgen/editalgen/placeholder"
	"github.com/editalgen/editalgen/storage"
	"github.com/editalgen/editalgen/web"
	"github.com/editalgen/editalgen/web/service"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
)

func initLogger() {
	level, err := logger.ParseLevel(config.GetLogLevel())
	if err != nil {
		log.Fatal(err)
	}
	logger.InitLogger(level)
}

func initDB() error {
	return database.InitDBWithConfig(config.GetDatabaseConfig())
}

func runWebServer() {
	log.Printf("%v %v", config.GetName(), config.GetVersion())
	initLogger()
	defer logger.CloseLogger()

	if err := initDB(); err != nil {
		log.Fatal(err)
	}
	defer database.CloseDB()

	server := web.NewServer()
	if err := server.Start(); err != nil {
		log.Println(err)
		return
	}

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGHUP, syscall.SIGINT, syscall.SIGTERM)
	for {
		sig := <-sigCh

		switch sig {
		case syscall.SIGHUP:
			logger.Info("received SIGHUP, restarting web server")
			if err := server.Stop(); err != nil {
				logger.Warning("stop server err:", err)
			}
			server = web.NewServer()
			if err := server.Start(); err != nil {
				log.Println(err)
				return
			}
		default:
			logger.Info("shutting down:", sig)
			if err := server.Stop(); err != nil {
				logger.Warning("stop server err:", err)
			}
			return
		}
	}
}

// initApp prepares a fresh installation: tables, the default admin and a
// clause dictionary when none exists.
func initApp() {
	if err := initDB(); err != nil {
		fmt.Println(err)
		return
	}
	created, err := database.EnsureDefaultAdmin()
	if err != nil {
		fmt.Println("create admin failed:", err)
		return
	}
	if created {
		fmt.Printf("created user %s with password %s, change it after the first login\n",
			database.DefaultAdminUsername, database.DefaultAdminPassword)
	}

	written, err := clause.WriteDefault(config.GetClausesFile())
	if err != nil {
		fmt.Println("write clauses failed:", err)
		return
	}
	if written {
		fmt.Println("default clauses written to", config.GetClausesFile())
	}
	if err := config.GetStorageConfig().EnsureDataFolder(); err != nil {
		fmt.Println("create data folder failed:", err)
		return
	}
	fmt.Println("init done")
}

func resetSetting() {
	if err := initDB(); err != nil {
		fmt.Println(err)
		return
	}

	settingService := service.SettingService{}
	if err := settingService.ResetSettings(); err != nil {
		fmt.Println("reset setting failed:", err)
	} else {
		fmt.Println("reset setting success")
	}
}

func showSetting() {
	if err := initDB(); err != nil {
		fmt.Println(err)
		return
	}
	settingService := service.SettingService{}
	port, err := settingService.GetPort()
	if err != nil {
		fmt.Println("get current port failed, error info:", err)
	}
	basePath, err := settingService.GetBasePath()
	if err != nil {
		fmt.Println("get base path failed, error info:", err)
	}
	userService := service.UserService{}
	user, err := userService.GetFirstUser()
	if err != nil {
		fmt.Println("get current user info failed, error info:", err)
		return
	}
	fmt.Println("current settings as follows:")
	fmt.Println("admin:", user.Username)
	fmt.Println("port:", port)
	fmt.Println("basePath:", basePath)
	fmt.Println("template:", config.GetTemplateFile())
	fmt.Println("clauses:", config.GetClausesFile())
	fmt.Println("storage:", config.GetStorageConfig().Type)
}

func updateSetting(port int, username string, password string) {
	if err := initDB(); err != nil {
		fmt.Println(err)
		return
	}

	settingService := service.SettingService{}

	if port > 0 {
		if err := settingService.SetPort(port); err != nil {
			fmt.Println("set port failed:", err)
		} else {
			fmt.Printf("set port %v success\n", port)
		}
	}
	if username != "" || password != "" {
		userService := service.UserService{}
		if err := userService.UpdateFirstUser(username, password); err != nil {
			fmt.Println("set username and password failed:", err)
		} else {
			fmt.Println("set username and password success")
		}
	}
}

func writeSampleTemplate(out string) {
	if err := docx.SampleTemplate(placeholder.Tokens()).Save(out); err != nil {
		fmt.Println("write template failed:", err)
		os.Exit(1)
	}
	fmt.Printf("sample template with %d placeholders written to %s\n", len(placeholder.Tokens()), out)
}

// renderEdital regenerates a stored edital into out without touching the
// document store.
func renderEdital(id int, out string) {
	if err := initDB(); err != nil {
		fmt.Println(err)
		os.Exit(1)
	}
	loader := clause.NewLoader(config.GetClausesFile(), caching.NewCache())
	generator := service.NewDocumentGenerator(loader, config.GetTemplateFile(), storage.NewLocal(config.GetDataFolder()))
	editalService := service.NewEditalService(generator)

	f, err := os.Create(out)
	if err != nil {
		fmt.Println(err)
		os.Exit(1)
	}
	if err := editalService.RenderTo(id, f); err != nil {
		f.Close()
		os.Remove(out)
		fmt.Println("render failed:", err)
		os.Exit(1)
	}
	if err := f.Close(); err != nil {
		fmt.Println(err)
		os.Exit(1)
	}
	fmt.Println("edital", id, "rendered to", out)
}

func main() {
	if err := godotenv.Load(); err != nil && !os.IsNotExist(err) {
		log.Println("load .env failed:", err)
	}

	var rootCmd = &cobra.Command{
		Use:   config.GetName(),
		Short: "Procurement notice (edital) generator",
	}

	var runCmd = &cobra.Command{
		Use:   "run",
		Short: "Run the web server",
		Run: func(cmd *cobra.Command, args []string) {
			runWebServer()
		},
	}

	var initCmd = &cobra.Command{
		Use:   "init",
		Short: "Create tables, the default admin and the clause file",
		Run: func(cmd *cobra.Command, args []string) {
			initApp()
		},
	}

	var settingCmd = &cobra.Command{
		Use:   "setting",
		Short: "Set settings",
	}

	var resetCmd = &cobra.Command{
		Use:   "reset",
		Short: "Reset all settings",
		Run: func(cmd *cobra.Command, args []string) {
			resetSetting()
		},
	}

	var showCmd = &cobra.Command{
		Use:   "show",
		Short: "Show current settings",
		Run: func(cmd *cobra.Command, args []string) {
			showSetting()
		},
	}

	var updateCmd = &cobra.Command{
		Use:   "update",
		Short: "Update settings",
		Run: func(cmd *cobra.Command, args []string) {
			port, _ := cmd.Flags().GetInt("port")
			username, _ := cmd.Flags().GetString("username")
			password, _ := cmd.Flags().GetString("password")
			updateSetting(port, username, password)
		},
	}

	updateCmd.Flags().Int("port", 0, "set web port")
	updateCmd.Flags().String("username", "", "set admin username")
	updateCmd.Flags().String("password", "", "set admin password")

	settingCmd.AddCommand(resetCmd, showCmd, updateCmd)

	var templateCmd = &cobra.Command{
		Use:   "template",
		Short: "Document template tools",
	}

	var sampleCmd = &cobra.Command{
		Use:   "sample <out.docx>",
		Short: "Write a template listing every placeholder",
		Args:  cobra.ExactArgs(1),
		Run: func(cmd *cobra.Command, args []string) {
			writeSampleTemplate(args[0])
		},
	}
	templateCmd.AddCommand(sampleCmd)

	var renderCmd = &cobra.Command{
		Use:   "render",
		Short: "Render a stored edital to a file",
		Run: func(cmd *cobra.Command, args []string) {
			id, _ := cmd.Flags().GetInt("id")
			out, _ := cmd.Flags().GetString("out")
			if out == "" {
				out = fmt.Sprintf("edital_%d.docx", id)
			}
			renderEdital(id, out)
		},
	}
	renderCmd.Flags().Int("id", 0, "edital id")
	renderCmd.Flags().String("out", "", "output file")
	_ = renderCmd.MarkFlagRequired("id")

	rootCmd.AddCommand(runCmd, initCmd, settingCmd, templateCmd, renderCmd)

	if err := rootCmd.Execute(); err != nil {
		fmt.Println(err)
		os.Exit(1)
	}
}
