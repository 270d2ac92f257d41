package evaluator

import (
	"regexp"
	"strings"
	"unicode"

	"catchup-feed/internal/domain/entity"

	"github.com/tidwall/gjson"
)

var fencePattern = regexp.MustCompile("(?s)```(?:json)?\\s*(.*?)\\s*```")

// stripFences removes a surrounding ```json ... ``` or ``` ... ``` fence,
// per spec.md §4.5 "strip ```json fences". If no fence is present the
// input is returned trimmed.
func stripFences(raw string) string {
	if m := fencePattern.FindStringSubmatch(raw); m != nil {
		return strings.TrimSpace(m[1])
	}
	return strings.TrimSpace(raw)
}

// parseResponse implements the small state machine spec.md §9 calls for:
// strip fences, then try array-then-object. Accepts either shape per
// spec.md §4.5.
func parseResponse(raw string) ([]entity.Evaluation, error) {
	cleaned := stripFences(raw)
	if !gjson.Valid(cleaned) {
		return nil, &entity.ParseError{Context: "llm evaluator", Reason: "response is not valid JSON"}
	}

	result := gjson.Parse(cleaned)
	var elements []gjson.Result
	if result.IsArray() {
		elements = result.Array()
	} else if result.IsObject() {
		elements = []gjson.Result{result}
	} else {
		return nil, &entity.ParseError{Context: "llm evaluator", Reason: "response is neither array nor object"}
	}

	evaluations := make([]entity.Evaluation, 0, len(elements))
	for _, el := range elements {
		eval, ok := parseElement(el)
		if !ok {
			continue
		}
		evaluations = append(evaluations, eval)
	}
	return evaluations, nil
}

// parseElement decodes one evaluation object. Elements missing a
// non-empty link or title are skipped per spec.md §4.5/§3's "kept Article
// has evaluate.title and evaluate.link non-empty" invariant.
func parseElement(el gjson.Result) (entity.Evaluation, bool) {
	link := el.Get("link").String()
	title := el.Get("title").String()
	if link == "" || title == "" {
		return entity.Evaluation{}, false
	}

	var tags []string
	for _, t := range el.Get("tags").Array() {
		tags = append(tags, t.String())
	}

	eval := entity.Evaluation{
		Link:          link,
		Title:         stripEmoji(title),
		Tags:          tags,
		Topic:         el.Get("topic").String(),
		Impact:        el.Get("impact").Float(),
		Novelty:       el.Get("novelty").Float(),
		Proof:         el.Get("proof").Float(),
		Summary:       stripEmoji(el.Get("summary").String()),
		WhyItMatters:  el.Get("why_it_matters").String(),
		KeyEvidence:   el.Get("key_evidence").String(),
		WhoShouldCare: el.Get("who_should_care").String(),
		NextAction:    el.Get("next_action").String(),
		Comparison:    el.Get("comparison").String(),
	}
	return eval, true
}

// emojiTable covers the comprehensive Unicode blocks spec.md §4.5 asks to
// strip from title/summary before storing.
var emojiTable = &unicode.RangeTable{
	R16: []unicode.Range16{
		{Lo: 0x2190, Hi: 0x21FF, Stride: 1}, // Arrows
		{Lo: 0x2300, Hi: 0x23FF, Stride: 1}, // Misc technical
		{Lo: 0x2600, Hi: 0x27BF, Stride: 1}, // Misc symbols, dingbats
		{Lo: 0xFE00, Hi: 0xFE0F, Stride: 1}, // Variation selectors
	},
	R32: []unicode.Range32{
		{Lo: 0x1F000, Hi: 0x1FFFF, Stride: 1}, // Supplementary symbols & pictographs
	},
}

func stripEmoji(s string) string {
	return strings.Map(func(r rune) rune {
		if unicode.Is(emojiTable, r) {
			return -1
		}
		return r
	}, s)
}
