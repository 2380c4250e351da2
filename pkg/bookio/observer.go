package bookio

import "log/slog"

// Observer receives per-link events while a document is imported.
type Observer interface {
	// Skipped is called for a link without a usable href. index is the
	// link's position in document order.
	Skipped(index int)
	Imported(url string)
	Failed(url string, err error)
	ParseFailed(err error)
}

// LogObserver reports import events through a slog.Logger.
type LogObserver struct {
	logger *slog.Logger
}

// NewLogObserver returns an observer logging to l, or to the default
// logger when l is nil.
func NewLogObserver(l *slog.Logger) *LogObserver {
	if l == nil {
		l = slog.Default()
	}

	return &LogObserver{logger: l.With(slog.String("component", "bookio"))}
}

func (o *LogObserver) Skipped(index int) {
	o.logger.Debug("link skipped, empty href", "index", index)
}

func (o *LogObserver) Imported(url string) {
	o.logger.Debug("link imported", "url", url)
}

func (o *LogObserver) Failed(url string, err error) {
	o.logger.Warn("link import failed", "url", url, "error", err)
}

func (o *LogObserver) ParseFailed(err error) {
	o.logger.Error("parsing document", "error", err)
}

// MultiObserver fans every event out to each of its observers.
type MultiObserver []Observer

func (m MultiObserver) Skipped(index int) {
	for _, o := range m {
		o.Skipped(index)
	}
}

func (m MultiObserver) Imported(url string) {
	for _, o := range m {
		o.Imported(url)
	}
}

func (m MultiObserver) Failed(url string, err error) {
	for _, o := range m {
		o.Failed(url, err)
	}
}

func (m MultiObserver) ParseFailed(err error) {
	for _, o := range m {
		o.ParseFailed(err)
	}
}

type nopObserver struct{}

func (nopObserver) Skipped(int)          {}
func (nopObserver) Imported(string)      {}
func (nopObserver) Failed(string, error) {}
func (nopObserver) ParseFailed(error)    {}
