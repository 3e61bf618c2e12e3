package interfaces

import "context"

// MessagingPort определяет интерфейс публикации событий наружу.
// Сервису нужна только сторона продюсера: события об исходах обработки
// позиций заказа разбирают внешние потребители.
type MessagingPort interface {
	// Publish публикует сообщение в указанную тему
	Publish(ctx context.Context, topic string, message []byte) error

	// PublishWithKey публикует сообщение с указанным ключом партиционирования
	PublishWithKey(ctx context.Context, topic string, key string, message []byte) error

	// Close закрывает соединение с системой обмена сообщениями
	Close() error
}
