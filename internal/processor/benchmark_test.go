package processor

import (
	"testing"

	"github.com/dam4rus/logan/internal/rules"
)

func BenchmarkColorizer(b *testing.B) {
	c := NewColorizer(ColorSet{
		{Pattern: rules.MustCompile("", "<warn>"), Color: 3},
		{Pattern: rules.MustCompile("", "<error>"), Color: 1},
		{Pattern: rules.MustCompile("", "<info>"), Color: 7},
	})
	lines := []string{
		"<info> request served in 3ms",
		"plain continuation line with no marker",
		"<error> upstream timed out",
	}

	b.ReportAllocs()
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		c.ProcessLine(lines[i%len(lines)])
	}
}

func BenchmarkEventExtractor(b *testing.B) {
	e := NewEventExtractor(rules.EventRule{
		Start: rules.MustCompile("", "BEGIN"),
		End:   rules.MustCompile("", "END"),
	})
	lines := []string{"BEGIN tx", "step 1", "step 2", "END tx"}

	b.ReportAllocs()
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		e.ProcessLine(lines[i%len(lines)])
	}
}

func BenchmarkStateExtractor(b *testing.B) {
	s := NewStateExtractor(rules.StateRule{
		Pattern: rules.MustCompile("", `state change: (\w+)`),
		Group:   1,
	})

	b.ReportAllocs()
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		s.ProcessLine("wlan0: state change: associated")
	}
}
