package main

import (
	"flag"
	"log"
	"os"

	"github.com/glabrego/photowall-cli/internal/config"
	"github.com/glabrego/photowall-cli/internal/fixture"
	"github.com/glabrego/photowall-cli/internal/logging"
)

func main() {
	addr := flag.String("addr", "127.0.0.1:8080", "listen address")
	posts := flag.Int("posts", 2500, "number of posts to serve")
	size := flag.Int("size", 64, "edge length of generated images in pixels")
	delay := flag.Duration("delay", 0, "delay added to every image response")
	failEvery := flag.Int("fail-every", 0, "answer 500 for every n-th image, 0 disables")
	flag.Parse()

	config.LoadDotEnv()
	level, err := logging.ParseLevel(os.Getenv("PHOTOWALL_LOG_LEVEL"))
	if err != nil {
		log.Fatalf("config error: %v", err)
	}
	logger := logging.New(os.Stderr, level)

	server := fixture.New(fixture.Options{
		Posts:     *posts,
		ImageSize: *size,
		Delay:     *delay,
		FailEvery: *failEvery,
		Logger:    logger,
	})
	logger.Info("fixture listening", "addr", *addr, "posts", *posts, "delay", delay.String())
	if err := server.App().Listen(*addr); err != nil {
		log.Fatalf("fixture server error: %v", err)
	}
}
