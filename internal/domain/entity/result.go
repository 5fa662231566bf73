package entity

import "time"

// ResultStorageKey is the fixed key every result store files records under.
const ResultStorageKey = "qaResults"

type ResultRecord struct {
	Question  string    `json:"question"`
	Answer    string    `json:"answer"`
	Timestamp time.Time `json:"timestamp"`
}

func NewResultRecord(question, answer string, at time.Time) ResultRecord {
	return ResultRecord{
		Question:  question,
		Answer:    answer,
		Timestamp: at.UTC(),
	}
}
