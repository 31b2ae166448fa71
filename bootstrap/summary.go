package bootstrap

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/unbreakablehf/xnio/component"
)

// Summary tracks and displays the application bootstrap process.
type Summary struct {
	serviceName     string
	version         string
	provider        string
	capabilities    string
	startupDuration time.Duration
	out             io.Writer
}

// NewSummary creates a new bootstrap summary tracker.
func NewSummary(serviceName, version string) *Summary {
	return &Summary{
		serviceName: serviceName,
		version:     version,
		out:         os.Stdout,
	}
}

// SetStartupDuration records the total startup time.
func (s *Summary) SetStartupDuration(d time.Duration) {
	s.startupDuration = d
}

// SetProvider records the active provider and what it supports.
func (s *Summary) SetProvider(name, capabilities string) {
	s.provider = name
	s.capabilities = capabilities
}

// DisplaySummary prints the bootstrap summary including live health from the registry.
func (s *Summary) DisplaySummary(registry *component.Registry) {
	w := s.out
	fmt.Fprintf(w, "\n")
	fmt.Fprintf(w, "🚀 %s v%s started in %.2fs\n\n",
		s.serviceName, s.version, s.startupDuration.Seconds())

	if s.provider != "" {
		fmt.Fprintf(w, "🔌 Provider\n")
		fmt.Fprintf(w, "   ├── %s\n", s.provider)
		fmt.Fprintf(w, "   └── %s\n\n", s.capabilities)
	}

	if registry == nil {
		fmt.Fprintf(w, "   └── No components registered\n\n")
		return
	}

	descs := registry.Describe()
	if len(descs) == 0 {
		fmt.Fprintf(w, "   └── No components registered\n\n")
		return
	}

	fmt.Fprintf(w, "📦 Components\n")
	for i, d := range descs {
		details := d.Details
		if d.Type != "" {
			details = fmt.Sprintf("[%s] %s", d.Type, details)
		}
		fmt.Fprintf(w, "   %s %s: %s\n", treePrefix(i, len(descs)), d.Name, strings.TrimSpace(details))
	}

	healthResults := registry.HealthAll(context.Background())
	healthy := 0
	fmt.Fprintf(w, "\n🏥 Health Check\n")
	for i, h := range healthResults {
		msg := ""
		if h.Message != "" {
			msg = fmt.Sprintf(" (%s)", h.Message)
		}
		fmt.Fprintf(w, "   %s %s %s: %s%s\n", treePrefix(i, len(healthResults)), healthStatusIcon(h.Status), h.Name, strings.ToLower(string(h.Status)), msg)
		if h.Status == component.StatusHealthy {
			healthy++
		}
	}
	fmt.Fprintf(w, "\n")

	if healthy == len(healthResults) {
		fmt.Fprintf(w, "✅ All components healthy (%d/%d)\n\n", healthy, len(healthResults))
	} else {
		fmt.Fprintf(w, "⚠️  Some components have issues (%d/%d healthy)\n\n", healthy, len(healthResults))
	}
}

func treePrefix(i, n int) string {
	if i == n-1 {
		return "└──"
	}
	return "├──"
}

func healthStatusIcon(status component.HealthStatus) string {
	switch status {
	case component.StatusHealthy:
		return "✅"
	case component.StatusDegraded:
		return "⚠️"
	case component.StatusUnhealthy:
		return "❌"
	default:
		return "❓"
	}
}
