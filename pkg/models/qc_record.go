package models

import "time"

// QCRecord is one row of the question-quality log
type QCRecord struct {
	Timestamp      time.Time    `json:"timestamp" db:"timestamp"`
	SessionID      string       `json:"session_id" db:"session_id"`
	WordID         int64        `json:"word_id" db:"word_id"`
	Word           string       `json:"word" db:"word"`
	Kind           QuestionKind `json:"kind" db:"kind"`
	Prompt         string       `json:"prompt" db:"prompt"`
	Stem           string       `json:"stem" db:"stem"`
	Options        []string     `json:"options" db:"options"`
	CorrectAnswers []string     `json:"correct_answers" db:"correct_answers"`
	JudgeChoice    string       `json:"judge_choice" db:"judge_choice"`
	JudgeCorrect   bool         `json:"judge_correct" db:"judge_correct"`
	JudgeScore     int          `json:"judge_score" db:"judge_score"` // 0 when no judge rated the question
	IsDefect       bool         `json:"is_defect" db:"is_defect"`
	DefectReasons  []string     `json:"defect_reasons" db:"defect_reasons"`
	Advisories     []string     `json:"advisories" db:"advisories"`
}

// Verdict is a judge's answer to one question
type Verdict struct {
	Choice  string `json:"choice"`  // The option the judge picked
	Score   int    `json:"score"`   // Quality from 1 (broken) to 5 (excellent)
	Comment string `json:"comment"` // Short justification
}
