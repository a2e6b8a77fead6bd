package app

import (
	"fmt"
	"strings"

	"github.com/tidwall/gjson"

	"samosa-vision/internal/domain/entity"
)

// DefaultRefusalMarkers — подстроки, по которым видно, что модель отказалась отвечать.
// Голое "cannot" сюда не входит: модель пишет его и в обычных описаниях.
var DefaultRefusalMarkers = []string{
	"sorry",
	"apologi",
	"unable to",
	"i can't",
	"i can’t",
	"i cannot",
	"not able to",
}

const (
	maxScore = 100
	maxAngle = 180
)

// Validator разбирает свободный текст модели в AnalysisRecord.
type Validator struct {
	markers []string
}

// NewValidator создаёт валидатор. Без маркеров используются DefaultRefusalMarkers.
func NewValidator(markers ...string) *Validator {
	if len(markers) == 0 {
		markers = DefaultRefusalMarkers
	}
	lower := make([]string, 0, len(markers))
	for _, m := range markers {
		if m = strings.ToLower(strings.TrimSpace(m)); m != "" {
			lower = append(lower, m)
		}
	}
	return &Validator{markers: lower}
}

// Validate проверяет ответ по шагам: отказ, поиск JSON, разбор, форма.
func (v *Validator) Validate(raw string) (*entity.AnalysisRecord, error) {
	if marker := v.refusal(raw); marker != "" {
		return nil, fmt.Errorf("%w: reply contains %q", entity.ErrNoSubjectDetected, marker)
	}

	payload, ok := extractPayload(raw)
	if !ok {
		return nil, fmt.Errorf("%w: no JSON object in reply", entity.ErrNoStructuredPayload)
	}
	if !gjson.Valid(payload) {
		return nil, fmt.Errorf("%w: malformed JSON", entity.ErrNoStructuredPayload)
	}
	doc := gjson.Parse(payload)
	if !doc.IsObject() {
		return nil, fmt.Errorf("%w: JSON is not an object", entity.ErrNoStructuredPayload)
	}

	return shape(doc)
}

func (v *Validator) refusal(text string) string {
	text = strings.ToLower(text)
	for _, m := range v.markers {
		if strings.Contains(text, m) {
			return m
		}
	}
	return ""
}

// extractPayload берёт всё от первой "{" до последней "}".
// Лишние скобки в прозе вокруг JSON захватят не тот фрагмент, тогда разбор упадёт.
func extractPayload(text string) (string, bool) {
	start := strings.IndexByte(text, '{')
	end := strings.LastIndexByte(text, '}')
	if start < 0 || end < start {
		return "", false
	}
	return text[start : end+1], true
}

func shape(doc gjson.Result) (*entity.AnalysisRecord, error) {
	score := doc.Get("score")
	if !score.Exists() || score.Type == gjson.Null {
		return nil, shapeErr("score is missing")
	}
	if score.Type != gjson.Number {
		return nil, shapeErr("score is not a number")
	}
	if s := score.Float(); s < 0 || s > maxScore {
		return nil, shapeErr("score %v is out of range 0..%d", s, maxScore)
	}

	corners := doc.Get("corners")
	if !corners.Exists() || corners.Type == gjson.Null {
		return nil, shapeErr("corners are missing")
	}
	if !corners.IsArray() {
		return nil, shapeErr("corners is not a list")
	}
	items := corners.Array()
	if len(items) == 0 {
		return nil, shapeErr("corners list is empty")
	}

	rec := &entity.AnalysisRecord{
		Score:   score.Float(),
		Corners: make([]entity.CornerObservation, 0, len(items)),
	}
	for i, c := range items {
		obs, err := corner(i, c)
		if err != nil {
			return nil, err
		}
		rec.Corners = append(rec.Corners, obs)
	}
	return rec, nil
}

func corner(i int, c gjson.Result) (entity.CornerObservation, error) {
	if !c.IsObject() {
		return entity.CornerObservation{}, shapeErr("corner %d is not an object", i)
	}
	name := c.Get("name")
	if name.Type != gjson.String || strings.TrimSpace(name.Str) == "" {
		return entity.CornerObservation{}, shapeErr("corner %d has no name", i)
	}
	angle := c.Get("angle")
	if angle.Type != gjson.Number {
		return entity.CornerObservation{}, shapeErr("corner %d angle is not a number", i)
	}
	if a := angle.Float(); a < 0 || a > maxAngle {
		return entity.CornerObservation{}, shapeErr("corner %d angle %v is out of range 0..%d", i, a, maxAngle)
	}
	comment := c.Get("comment")
	if comment.Type != gjson.String {
		return entity.CornerObservation{}, shapeErr("corner %d has no comment", i)
	}
	return entity.CornerObservation{
		Name:    name.Str,
		Angle:   angle.Float(),
		Comment: comment.Str,
	}, nil
}

func shapeErr(format string, args ...any) error {
	return fmt.Errorf("%w: "+format, append([]any{entity.ErrInvalidAnalysisShape}, args...)...)
}
