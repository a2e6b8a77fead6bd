package entity

// CornerObservation — комментарий модели к одному углу самсы.
type CornerObservation struct {
	Name    string  `json:"name"`    // подпись угла: "Top", "Left", "Right"
	Angle   float64 `json:"angle"`   // оценка угла в градусах
	Comment string  `json:"comment"` // замечание о хрусткости
}

// AnalysisRecord хранит проверенный результат анализа.
type AnalysisRecord struct {
	Score   float64             `json:"score"`   // общая оценка 0..100
	Corners []CornerObservation `json:"corners"` // минимум один угол
}
