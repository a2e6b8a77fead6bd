package entity

import "errors"

var (
	// ErrInvalidInput — файла нет или это не изображение.
	ErrInvalidInput = errors.New("please choose an image file")
	// ErrEncoding — не удалось прочитать или закодировать файл.
	ErrEncoding = errors.New("could not encode the image")
	// ErrNoSubjectDetected — модель отказалась анализировать фото.
	ErrNoSubjectDetected = errors.New("no samosa detected, try another photo")
	// ErrNoStructuredPayload — в ответе модели нет разбираемого JSON.
	ErrNoStructuredPayload = errors.New("the analysis reply could not be read")
	// ErrInvalidAnalysisShape — JSON есть, но без нужных полей.
	ErrInvalidAnalysisShape = errors.New("the analysis reply is incomplete")

	// ErrBusy — действие недоступно в текущем состоянии.
	ErrBusy = errors.New("an analysis is already in progress")
	// ErrSessionNotFound — сессии с таким ID нет.
	ErrSessionNotFound = errors.New("session not found")
)
