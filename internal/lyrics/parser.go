package lyrics

import (
	"log/slog"
	"regexp"
	"strconv"
	"strings"
	"unicode/utf8"
)

// Options controls parsing behavior. The zero value matches the common case:
// section markers excluded from target lines, empty lines dropped.
type Options struct {
	// Format declares the source format. Empty defaults to [FormatText].
	Format Format

	// PreserveEmptyLines includes blank lines in TargetLines as empty
	// strings (stanza separators for structure-aware consumers).
	PreserveEmptyLines bool

	// KeepSectionMarkers includes section markers like "[Verse 1]" in
	// TargetLines instead of filtering them out.
	KeepSectionMarkers bool

	// Logger receives the parse summary. Nil uses slog.Default().
	Logger *slog.Logger
}

var (
	// Section markers: "[Verse 1]", "(Intro)", or a bare section keyword
	// optionally numbered and colon-terminated.
	sectionBracket = regexp.MustCompile(`^\[(.*?)\]$`)
	sectionParen   = regexp.MustCompile(`^\((.*?)\)$`)
	sectionBare    = regexp.MustCompile(`(?i)^(?:verse|hook|chorus|bridge|intro|outro|refrain|pre-chorus|interlude|breakdown|drop)\s*\d*\s*[:：]?\s*$`)

	lrcTimeTag = regexp.MustCompile(`\[(\d{1,2}):(\d{2})(?:\.(\d{1,3}))?\]`)
	lrcMetaTag = regexp.MustCompile(`(?i)^\[(ti|ar|al|by|offset|length|re|ve):(.+)\]$`)
)

// Parse parses lyrics content into structured lines. The content must be
// valid UTF-8 (an optional leading BOM is stripped); anything else fails
// with [ErrEncoding].
func Parse(content string, opts Options) (*Parsed, error) {
	content = strings.TrimPrefix(content, "\ufeff")
	if !utf8.ValidString(content) {
		return nil, ErrEncoding
	}
	content = strings.TrimSpace(content)

	format := opts.Format
	if format == "" {
		format = FormatText
	}
	isLRC := format == FormatLRC

	log := opts.Logger
	if log == nil {
		log = slog.Default()
	}

	p := &Parsed{Format: format}

	for i, raw := range strings.Split(content, "\n") {
		line := strings.TrimRight(raw, " \t\r")

		if isLRC && lrcMetaTag.MatchString(strings.TrimSpace(line)) {
			continue
		}

		var lrcTime float64
		var hasTime bool
		if isLRC {
			if tags := lrcTimeTag.FindAllStringSubmatch(line, -1); len(tags) > 0 {
				// The first tag times the line; extra tags (repeated
				// choruses) are stripped along with it.
				if secs, ok := parseLRCTime(tags[0]); ok {
					lrcTime = secs
					hasTime = true
					p.HasTimestamps = true
				}
				line = strings.TrimSpace(lrcTimeTag.ReplaceAllString(line, ""))
			}
		}

		if strings.TrimSpace(line) == "" {
			p.Lines = append(p.Lines, Line{Index: i, IsEmpty: true})
			continue
		}

		if isSec, label := sectionMarker(strings.TrimSpace(line)); isSec {
			p.Sections = append(p.Sections, label)
			p.Lines = append(p.Lines, Line{
				Index:        i,
				Text:         strings.TrimSpace(line),
				IsSection:    true,
				SectionLabel: label,
				LRCTime:      lrcTime,
				HasLRCTime:   hasTime,
			})
			continue
		}

		p.Lines = append(p.Lines, Line{
			Index:      i,
			Text:       line,
			LRCTime:    lrcTime,
			HasLRCTime: hasTime,
		})
	}

	for _, l := range p.Lines {
		switch {
		case l.IsSection:
			if opts.KeepSectionMarkers {
				p.TargetLines = append(p.TargetLines, l.Text)
			}
		case l.IsEmpty:
			if opts.PreserveEmptyLines {
				p.TargetLines = append(p.TargetLines, "")
			}
		default:
			p.TargetLines = append(p.TargetLines, l.Text)
		}
	}
	p.TotalLines = len(p.Lines)

	log.Info("lyrics parsed",
		slog.Int("target_lines", len(p.TargetLines)),
		slog.Int("sections", len(p.Sections)),
		slog.String("format", string(format)),
		slog.Bool("timestamps", p.HasTimestamps))

	return p, nil
}

// sectionMarker reports whether a trimmed line is a structural section
// marker and extracts its label.
func sectionMarker(line string) (bool, string) {
	if m := sectionBracket.FindStringSubmatch(line); m != nil {
		return true, strings.TrimSpace(m[1])
	}
	if m := sectionParen.FindStringSubmatch(line); m != nil {
		return true, strings.TrimSpace(m[1])
	}
	if sectionBare.MatchString(line) {
		return true, line
	}
	return false, ""
}

// parseLRCTime converts a matched time tag to seconds: minutes×60 + seconds
// + fraction, with 1–3 fraction digits right-padded to milliseconds. A tag
// that fails to parse is skipped (the line stays untimed) rather than
// failing the file.
func parseLRCTime(match []string) (float64, bool) {
	mins, err := strconv.Atoi(match[1])
	if err != nil {
		return 0, false
	}
	secs, err := strconv.Atoi(match[2])
	if err != nil {
		return 0, false
	}
	frac := match[3]
	ms := 0
	if frac != "" {
		padded := (frac + "000")[:3]
		ms, err = strconv.Atoi(padded)
		if err != nil {
			return 0, false
		}
	}
	return float64(mins)*60 + float64(secs) + float64(ms)/1000, true
}
