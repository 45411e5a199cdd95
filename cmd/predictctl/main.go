package main

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/NeuralTrust/DisasterGate/pkg/config"
	"github.com/NeuralTrust/DisasterGate/pkg/infra/httpx"
	"github.com/NeuralTrust/DisasterGate/pkg/infra/predictclient"
	"github.com/NeuralTrust/DisasterGate/pkg/version"
	"github.com/spf13/pflag"
)

func main() {
	if err := run(os.Args[1:]); err != nil {
		fmt.Fprintf(os.Stderr, "predictctl: %v\n", err)
		os.Exit(1)
	}
}

func run(args []string) error {
	_, _ = config.LoadEnv()

	cfg, err := config.Load("./config")
	if err != nil {
		return err
	}

	fs := pflag.NewFlagSet("predictctl", pflag.ContinueOnError)
	url := fs.String("url", cfg.Client.URL, "full URL of the predict endpoint")
	timeout := fs.Duration("timeout", cfg.Client.Timeout, "request timeout")
	if err := fs.Parse(args); err != nil {
		return err
	}
	text := strings.Join(fs.Args(), " ")
	if text == "" {
		return fmt.Errorf("usage: predictctl [--url URL] TEXT")
	}

	client, err := predictclient.New(*url, httpx.NewFastHTTPClient(
		httpx.WithTimeout(*timeout),
		httpx.WithUserAgent(version.UserAgent("predictctl")),
	))
	if err != nil {
		return err
	}

	ctx, cancel := context.WithTimeout(context.Background(), *timeout)
	defer cancel()
	label, err := client.Predict(ctx, text)
	if err != nil {
		return err
	}
	fmt.Println(label.String())
	return nil
}
