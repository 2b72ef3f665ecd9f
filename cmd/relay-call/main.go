// Command relay-call sends a single prompt to an agent through the
// relay's dispatch endpoint and prints the result.
package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/sage-x-project/sage-relay/config"
	"github.com/sage-x-project/sage-relay/relayclient"
)

func main() {
	to := flag.String("to", "", "target agent address (0x...)")
	timeoutSec := flag.Int("timeout", 0, "response timeout in seconds (0 = use REQUEST_TIMEOUT_SEC / default)")
	flag.Parse()

	if *to == "" {
		log.Fatal("missing required -to address")
	}
	prompt := strings.Join(flag.Args(), " ")
	if prompt == "" {
		log.Fatal("missing prompt argument")
	}

	cfg := config.LoadClientEnv()
	dispatchURL := strings.Replace(cfg.RelayURL, "/ws/announce", "/ws/input", 1)

	timeout := time.Duration(cfg.RequestTimeoutSec) * time.Second
	if *timeoutSec > 0 {
		timeout = time.Duration(*timeoutSec) * time.Second
	}

	result, err := relayclient.Call(context.Background(), dispatchURL, *to, prompt, timeout)
	if err != nil {
		log.Fatalf("call failed: %v", err)
	}
	fmt.Println(result)
}
