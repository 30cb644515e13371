package port

// ContentValidatorPort проверяет сериализованный контент версии перед сохранением
type ContentValidatorPort interface {
	ValidateContent(content string) error
}
