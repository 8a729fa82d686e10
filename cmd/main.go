package main

import (
	"fmt"
	"os"

	"github.com/sirupsen/logrus"
	"github.com/urfave/cli"

	"terminalfleet/src/database"
	"terminalfleet/src/security"
	"terminalfleet/src/server"
)

var Version string

func main() {
	app := cli.NewApp()
	app.Name = "fleet"
	app.Usage = "The terminal fleet command line interface"

	app.Commands = []cli.Command{
		serveCMD,
		genkeyCMD,
	}

	if err := app.Run(os.Args); err != nil {
		_, _ = fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

var (
	serveCMD = cli.Command{
		Name:        "serve",
		Usage:       "run the fleet API server",
		Action:      serveAction,
		ArgsUsage:   "",
		Flags:       []cli.Flag{},
		Description: `Run the terminal fleet API server`,
	}
	genkeyCMD = cli.Command{
		Name:        "genkey",
		Usage:       "generate a credentials key",
		Action:      genkeyAction,
		ArgsUsage:   "",
		Flags:       []cli.Flag{},
		Description: `Print a fresh base64 key for FLEET_CREDENTIALS_KEY`,
	}
)

func serveAction(_ *cli.Context) error {
	logrus.Info("Starting fleet API server")

	db, err := database.Connect()
	if err != nil {
		logrus.WithError(err).Error("Failed to connect to database")
		return err
	}

	vault, err := security.NewVaultFromEnv()
	if err != nil {
		logrus.WithError(err).Error("Failed to initialize credential vault")
		return err
	}

	server.StartServer(db, vault)
	return nil
}

func genkeyAction(_ *cli.Context) error {
	key, err := security.GenerateKey()
	if err != nil {
		return err
	}
	fmt.Println(key)
	return nil
}
