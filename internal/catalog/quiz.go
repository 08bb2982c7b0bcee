// Package catalog holds the compiled-in study content: quiz questions,
// writing prompts and ondoku passages. Runtime admin overrides are merged
// on top of these values; absence of an override means the catalog value.
package catalog

import (
	"math/rand"

	"gogaku_suite/internal/model"
)

// Quiz は出題1問分の静的定義
type Quiz struct {
	ID             int                `json:"id"`
	Question       string             `json:"question"`
	Japanese       string             `json:"japanese"` // 日本語の例文
	KoreanTemplate string             `json:"korean_template"`
	Options        []model.QuizOption `json:"options"`
	CorrectOption  int                `json:"correct_option"`
	Explanation    string             `json:"explanation"`
}

// ResolvedQuiz は上書き解決後にクライアントへ返す1問
type ResolvedQuiz struct {
	ID             int                `json:"id"`
	Question       string             `json:"question"`
	Japanese       string             `json:"japanese"`
	KoreanTemplate string             `json:"korean_template"`
	Options        []model.QuizOption `json:"options"`
	CorrectOption  int                `json:"correct_option"`
	Explanation    string             `json:"explanation"`
}

// Resolve は上書き → 静的カタログの優先順で表示用の値を決める。
// override が nil の場合はカタログの値をそのまま使う。
func Resolve(q Quiz, override *model.QuizExplanationOverride) ResolvedQuiz {
	resolved := ResolvedQuiz{
		ID:             q.ID,
		Question:       q.Question,
		Japanese:       q.Japanese,
		KoreanTemplate: q.KoreanTemplate,
		Options:        q.Options,
		CorrectOption:  q.CorrectOption,
		Explanation:    q.Explanation,
	}
	if override == nil {
		return resolved
	}
	if override.Explanation != "" {
		resolved.Explanation = override.Explanation
	}
	if override.Japanese != nil && *override.Japanese != "" {
		resolved.Japanese = *override.Japanese
	}
	if override.KoreanTemplate != nil && *override.KoreanTemplate != "" {
		resolved.KoreanTemplate = *override.KoreanTemplate
	}
	if len(override.Options) > 0 {
		resolved.Options = override.Options
	}
	return resolved
}

// ShuffleQuizzes は問題順をその場でシャッフルします (Fisher–Yates)。
// シードは固定しないため順序は再現不可。要素の多重集合は変わらない。
func ShuffleQuizzes(quizzes []ResolvedQuiz) {
	rand.Shuffle(len(quizzes), func(i, j int) {
		quizzes[i], quizzes[j] = quizzes[j], quizzes[i]
	})
	for i := range quizzes {
		quizzes[i].Options = shuffledOptions(quizzes[i].Options)
	}
}

func shuffledOptions(options []model.QuizOption) []model.QuizOption {
	shuffled := make([]model.QuizOption, len(options))
	copy(shuffled, options)
	rand.Shuffle(len(shuffled), func(i, j int) {
		shuffled[i], shuffled[j] = shuffled[j], shuffled[i]
	})
	return shuffled
}

// FindQuiz はIDでカタログを引く。見つからなければ nil。
func FindQuiz(id int) *Quiz {
	for i := range Quizzes {
		if Quizzes[i].ID == id {
			return &Quizzes[i]
		}
	}
	return nil
}
