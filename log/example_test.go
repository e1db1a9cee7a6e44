package log_test

import (
	"log/slog"
	"os"

	"github.com/js-lib-com/wood-sub003/log"
)

func Example() {
	logger := log.Make(os.Stdout,
		log.WithFormat(log.FormatText),
		log.WithPretty(false),
		log.WithTimeLayout("none"),
	)

	logger.With(slog.String("origin", "page/page.htm")).
		Info("resolved", slog.Int("references", 4))
	// Output:
	// level=INFO msg=resolved origin=page/page.htm references=4
}

func Example_levels() {
	logger := log.Make(os.Stdout,
		log.WithLevel(log.LevelWarn),
		log.WithFormat(log.FormatText),
		log.WithPretty(false),
		log.WithTimeLayout("none"),
	)

	logger.Debug("hidden")
	logger.Warn("shown")
	// Output:
	// level=WARN msg=shown
}
