package main

import (
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"
	"github.com/localnerve/fabrica/internal/testutil"
)

func main() {
	var showHelp bool
	flag.BoolVar(&showHelp, "h", false, "show help")
	var envFilename string
	flag.StringVar(&envFilename, "f", "", "path to the .env file")
	flag.Parse()

	usage := `
Run the fabrica dev database container with the environment variables from the .env file.

Usage:

testcontainers [-h] [-f ENV_FILE_PATH]

ENV_FILE_PATH: path to the .env file

example
  testcontainers -f /path/to/something/.env
`
	// if -h flag print usage and return
	if showHelp {
		fmt.Println(usage)
		return
	}

	if envFilename != "" {
		log.Printf("Loading environment variables from %s\n", envFilename)
		if err := godotenv.Load(envFilename); err != nil {
			log.Fatalf("Failed to load environment variables: %v\n", err)
		}
	} else {
		log.Printf("No environment file specified, using current environment variables\n")
	}

	if !testutil.DockerAvailable() {
		log.Fatalf("Docker is not available, cannot start containers")
	}

	sigs := make(chan os.Signal, 1)
	signal.Notify(sigs, syscall.SIGINT, syscall.SIGTERM, syscall.SIGTSTP, syscall.SIGQUIT)

	var dbContainer *testutil.MySQLContainer
	go func() {
		var err error
		dbContainer, err = testutil.StartMySQLContainer(nil)
		if err != nil {
			log.Fatalf("Failed to create database container: %v\n", err)
		}
		log.Printf("Database ready at %s", dbContainer.DSN)
	}()

	sig := <-sigs
	log.Printf("\nReceived signal: %v, terminating containers...\n", sig)
	if dbContainer != nil {
		dbContainer.Terminate(nil)
	}
}
