package edi

import (
	"fmt"
	"regexp"
	"strings"
)

// Format is the detected message standard or EDIFACT message type.
type Format string

const (
	FormatBAPLIE  Format = "BAPLIE"  // bayplan / stowage plan
	FormatMOVINS  Format = "MOVINS"  // stowage instruction
	FormatCOPRAR  Format = "COPRAR"  // container discharge/loading order
	FormatIFTMIN  Format = "IFTMIN"  // transport instruction
	FormatCODECO  Format = "CODECO"  // container gate-in/gate-out
	FormatCUSCAR  Format = "CUSCAR"  // customs cargo report
	FormatEDIFACT Format = "EDIFACT" // unrecognized EDIFACT message
	FormatX12     Format = "X12"
	FormatUnknown Format = "UNKNOWN"
)

// bgmFormats maps BGM document codes to the message types they identify.
var bgmFormats = map[string]Format{
	"945": FormatBAPLIE,
	"910": FormatMOVINS,
	"920": FormatCOPRAR,
	"380": FormatIFTMIN,
	"950": FormatCODECO,
	"951": FormatCUSCAR,
}

var containerNumber = regexp.MustCompile(`\b[A-Z]{4}[0-9]{7}\b`)

// ValidationResult is the deterministic structural check of an interchange.
type ValidationResult struct {
	Format          Format   `json:"format"`
	SegmentCount    int      `json:"segmentCount"`
	ContainerCount  int      `json:"containerCount"`
	Containers      []string `json:"containers,omitempty"`
	DuplicateBoxes  []string `json:"duplicateBoxes,omitempty"`
	Errors          []string `json:"errors,omitempty"`
	Warnings        []string `json:"warnings,omitempty"`
	Suggestions     []string `json:"suggestions,omitempty"`
}

// DetectFormat classifies an interchange from its envelope and BGM segment.
// BGM-coded message types win over the generic EDIFACT/X12 classification.
func DetectFormat(text string) Format {
	for code, format := range bgmFormats {
		if strings.Contains(text, "BGM+"+code) {
			return format
		}
	}
	hasUNB := strings.Contains(text, "UNB+")
	hasUNH := strings.Contains(text, "UNH+")
	if hasUNB || hasUNH {
		return FormatEDIFACT
	}
	if strings.Contains(text, "ISA*") || strings.Contains(text, "ISA+") || strings.Contains(text, "GS*") {
		return FormatX12
	}
	return FormatUnknown
}

// requiredSegments lists, per format, the segments a well-formed message
// must carry. Missing entries become errors.
var requiredSegments = map[Format][]string{
	FormatBAPLIE:  {"UNB", "UNH", "BGM", "LOC", "UNT", "UNZ"},
	FormatMOVINS:  {"UNB", "UNH", "BGM", "LOC", "UNT", "UNZ"},
	FormatCOPRAR:  {"UNB", "UNH", "BGM", "EQD", "UNT", "UNZ"},
	FormatIFTMIN:  {"UNB", "UNH", "BGM", "NAD", "UNT", "UNZ"},
	FormatCODECO:  {"UNB", "UNH", "BGM", "EQD", "UNT", "UNZ"},
	FormatCUSCAR:  {"UNB", "UNH", "BGM", "NAD", "UNT", "UNZ"},
	FormatEDIFACT: {"UNB", "UNH", "UNT", "UNZ"},
}

// ValidateStructure runs the deterministic checks: envelope pairing,
// required segments, and container-number plausibility.
func ValidateStructure(text string) *ValidationResult {
	format := DetectFormat(text)
	result := &ValidationResult{Format: format}

	segments := splitSegments(text)
	result.SegmentCount = len(segments)

	present := make(map[string]bool)
	for _, seg := range segments {
		present[segmentTag(seg)] = true
	}

	if required, ok := requiredSegments[format]; ok {
		for _, tag := range required {
			if !present[tag] {
				result.Errors = append(result.Errors, fmt.Sprintf("missing required segment %s", tag))
			}
		}
	}

	switch format {
	case FormatX12:
		if !strings.Contains(text, "IEA") {
			result.Warnings = append(result.Warnings, "interchange trailer IEA not found")
		}
	case FormatUnknown:
		result.Errors = append(result.Errors, "unrecognized interchange: no EDIFACT or X12 envelope found")
		result.Suggestions = append(result.Suggestions, "check that the file starts with UNB (EDIFACT) or ISA (X12)")
	}

	seen := make(map[string]int)
	for _, box := range containerNumber.FindAllString(text, -1) {
		seen[box]++
		if seen[box] == 1 {
			result.Containers = append(result.Containers, box)
		}
		if seen[box] == 2 {
			result.DuplicateBoxes = append(result.DuplicateBoxes, box)
		}
	}
	result.ContainerCount = len(result.Containers)

	if len(result.DuplicateBoxes) > 0 {
		result.Warnings = append(result.Warnings,
			fmt.Sprintf("%d container number(s) appear more than once", len(result.DuplicateBoxes)))
	}
	if (format == FormatBAPLIE || format == FormatCOPRAR || format == FormatCODECO) && result.ContainerCount == 0 {
		result.Warnings = append(result.Warnings, "no container numbers found in a container-oriented message")
		result.Suggestions = append(result.Suggestions, "container numbers should look like MSCU1234567")
	}

	return result
}

// splitSegments breaks an interchange into segments on the EDIFACT
// terminator or, for X12 and pre-split text, on line breaks.
func splitSegments(text string) []string {
	var parts []string
	if strings.Contains(text, "'") {
		parts = strings.Split(text, "'")
	} else if strings.Contains(text, "~") {
		parts = strings.Split(text, "~")
	} else {
		parts = strings.Split(text, "\n")
	}
	segments := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			segments = append(segments, p)
		}
	}
	return segments
}

func segmentTag(segment string) string {
	for i, r := range segment {
		if r == '+' || r == '*' || r == ':' {
			return segment[:i]
		}
	}
	if len(segment) > 3 {
		return segment[:3]
	}
	return segment
}
