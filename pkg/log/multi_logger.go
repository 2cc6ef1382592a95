package log

// MultiLogger sends events to several loggers, e.g. a SlogAdapter for the
// console and a FileLogger for capture. Nil entries are skipped.
type MultiLogger struct {
	loggers []Logger
}

// NewMultiLogger creates a MultiLogger.
func NewMultiLogger(loggers ...Logger) *MultiLogger {
	m := &MultiLogger{}
	for _, l := range loggers {
		if l != nil {
			m.loggers = append(m.loggers, l)
		}
	}
	return m
}

// Log sends the event to all loggers.
func (m *MultiLogger) Log(event Event) {
	for _, l := range m.loggers {
		l.Log(event)
	}
}

// FilteredLogger forwards only the events its predicate keeps.
type FilteredLogger struct {
	next Logger
	keep func(Event) bool
}

// NewFilteredLogger forwards events matching f to next.
func NewFilteredLogger(next Logger, f Filter) *FilteredLogger {
	return &FilteredLogger{next: next, keep: f.Matches}
}

// WithoutCategories forwards every event except those in cats. Dropping
// CategoryDispatch keeps a capture to lifecycle steps, states and errors
// when traffic would otherwise dominate it.
func WithoutCategories(next Logger, cats ...Category) *FilteredLogger {
	var skip [CategoryError + 1]bool
	for _, c := range cats {
		if int(c) < len(skip) {
			skip[c] = true
		}
	}
	return &FilteredLogger{
		next: next,
		keep: func(e Event) bool {
			return int(e.Category) >= len(skip) || !skip[e.Category]
		},
	}
}

// Log forwards the event if it is kept.
func (f *FilteredLogger) Log(event Event) {
	if f.keep(event) {
		f.next.Log(event)
	}
}

var (
	_ Logger = (*MultiLogger)(nil)
	_ Logger = (*FilteredLogger)(nil)
)
