package ui

import "github.com/lepinkainen/webpconv/webp"

// Messages sent from dispatcher workers to the batch TUI
type WorkerStartedMsg struct {
	WorkerID int
	Source   string
}

type WorkerCompletedMsg struct {
	WorkerID int
	Result   webp.Result
}

// BatchDoneMsg tells the TUI that every task has reported
type BatchDoneMsg struct{}
