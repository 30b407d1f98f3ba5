package main

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/mockwire-testing/mockwire-go/internal/config"
	"github.com/mockwire-testing/mockwire-go/internal/server"
)

var (
	port          int
	host          string
	logLevel      string
	endpointsFile string
	pidFile       string
	saveFile      string
	origin        []string
)

func main() {
	rootCmd := &cobra.Command{
		Use:   "mockwired",
		Short: "mockwired - a standalone HTTP mock server",
		Long:  `mockwired serves locally-defined mock responses over the wire and exposes an admin API to manage them at runtime.`,
	}

	startCmd := &cobra.Command{
		Use:   "start",
		Short: "Start the mock server",
		Run:   runStart,
	}

	startCmd.Flags().IntVar(&port, "port", 2580, "Port to run the server on")
	startCmd.Flags().StringVar(&host, "host", "localhost", "Host to bind to")
	startCmd.Flags().StringVar(&logLevel, "loglevel", "info", "Log level (debug, info, warn, error)")
	startCmd.Flags().StringVar(&endpointsFile, "endpoints", "", "Endpoint file to load on startup")
	startCmd.Flags().StringVar(&pidFile, "pidfile", "mockwired.pid", "PID file location")
	startCmd.Flags().StringSliceVar(&origin, "origin", []string{}, "Allowed CORS origins")

	stopCmd := &cobra.Command{
		Use:   "stop",
		Short: "Stop a running mock server",
		Run:   runStop,
	}

	stopCmd.Flags().StringVar(&pidFile, "pidfile", "mockwired.pid", "PID file location")

	validateCmd := &cobra.Command{
		Use:   "validate <file>",
		Short: "Validate an endpoint file without starting a server",
		Args:  cobra.ExactArgs(1),
		Run:   runValidate,
	}

	saveCmd := &cobra.Command{
		Use:   "save",
		Short: "Save a running server's endpoints to a file",
		Run:   runSave,
	}

	saveCmd.Flags().IntVar(&port, "port", 2580, "Mock server port")
	saveCmd.Flags().StringVar(&host, "host", "localhost", "Mock server host")
	saveCmd.Flags().StringVar(&saveFile, "savefile", "mockwired.json", "File to save to")

	rootCmd.AddCommand(startCmd, stopCmd, validateCmd, saveCmd)

	// Default to start if no command provided
	if len(os.Args) == 1 {
		os.Args = append(os.Args, "start")
	}

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func runStart(cmd *cobra.Command, args []string) {
	srv, err := server.New(&server.Config{
		Port:          port,
		Host:          host,
		LogLevel:      logLevel,
		EndpointsFile: endpointsFile,
		Origin:        origin,
	})
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error creating server: %v\n", err)
		os.Exit(1)
	}

	if endpointsFile != "" {
		count, err := srv.LoadEndpoints(endpointsFile)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error loading endpoint file: %v\n", err)
			os.Exit(1)
		}
		fmt.Printf("Loaded %d endpoints from %s\n", count, endpointsFile)
	}

	if err := os.WriteFile(pidFile, []byte(fmt.Sprintf("%d", os.Getpid())), 0644); err != nil {
		fmt.Fprintf(os.Stderr, "Error writing PID file: %v\n", err)
	}

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)

	go func() {
		<-sigChan
		fmt.Println("\nShutting down...")

		if err := srv.Stop(); err != nil {
			fmt.Fprintf(os.Stderr, "Error stopping server: %v\n", err)
		}

		os.Remove(pidFile)
		os.Exit(0)
	}()

	if err := srv.Start(); err != nil && err != http.ErrServerClosed {
		fmt.Fprintf(os.Stderr, "Error starting server: %v\n", err)
		os.Remove(pidFile)
		os.Exit(1)
	}
}

func runStop(cmd *cobra.Command, args []string) {
	pidData, err := os.ReadFile(pidFile)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error reading PID file: %v\n", err)
		os.Exit(1)
	}

	var pid int
	fmt.Sscanf(string(pidData), "%d", &pid)

	process, err := os.FindProcess(pid)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error finding process: %v\n", err)
		os.Exit(1)
	}

	if err := process.Signal(syscall.SIGTERM); err != nil {
		fmt.Fprintf(os.Stderr, "Error stopping process: %v\n", err)
		os.Exit(1)
	}

	fmt.Println("Server stopped")
}

func runValidate(cmd *cobra.Command, args []string) {
	f, err := config.Load(args[0])
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	if err := config.Validate(f); err != nil {
		fmt.Fprintf(os.Stderr, "Invalid endpoint file: %v\n", err)
		os.Exit(1)
	}

	fmt.Printf("%s is valid (%d endpoints)\n", args[0], len(f.Endpoints))
}

func runSave(cmd *cobra.Command, args []string) {
	url := fmt.Sprintf("http://%s:%d/_mockwire/endpoints?replayable=true", host, port)
	resp, err := http.Get(url)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error connecting to mockwired: %v\n", err)
		os.Exit(1)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		fmt.Fprintf(os.Stderr, "Error getting endpoints: %s\n", resp.Status)
		os.Exit(1)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error reading response: %v\n", err)
		os.Exit(1)
	}

	var listing struct {
		Endpoints []config.Endpoint `json:"endpoints"`
	}
	if err := json.Unmarshal(body, &listing); err != nil {
		fmt.Fprintf(os.Stderr, "Error parsing response: %v\n", err)
		os.Exit(1)
	}

	if err := config.Save(saveFile, &config.File{Endpoints: listing.Endpoints}); err != nil {
		fmt.Fprintf(os.Stderr, "Error saving endpoint file: %v\n", err)
		os.Exit(1)
	}

	fmt.Printf("Saved %d endpoints to %s\n", len(listing.Endpoints), saveFile)
}
