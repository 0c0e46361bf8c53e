package main

import (
	"log"
	"log/slog"
	"os"

	"github.com/dmitrijs2005/gentlepol/internal/admin"
	"github.com/dmitrijs2005/gentlepol/internal/logging"
)

func main() {
	logger := logging.NewJSONLogger(os.Stderr, slog.LevelWarn)

	if err := admin.New(os.Stdout, logger).App().Run(os.Args); err != nil {
		log.Fatal(err)
	}
}
