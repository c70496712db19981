package domain

// ProgressIndeterminate は待機中など進捗率が定まらないことを示す値なのだ。
const ProgressIndeterminate = -1.0

// Progress は表示層へ通知する進捗イベントです。
// Value は [0,1] の範囲か ProgressIndeterminate です。
type Progress struct {
	Status string
	Value  float64
}

// IsIndeterminate は進捗率が不定のイベントかどうかを返します。
func (p Progress) IsIndeterminate() bool {
	return p.Value < 0
}
