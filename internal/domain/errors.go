package domain

import "errors"

// ErrStoreUnavailable возвращается, когда запрос к хранилищу не выполнился.
// Вызывающий трактует это как «в этом цикле состояние расписания не меняем».
var ErrStoreUnavailable = errors.New("хранилище недоступно")

// ErrProviderUnavailable возвращается при отказе провайдера контента.
// Ошибка локальна для одного канала и не прерывает агрегацию остальных.
var ErrProviderUnavailable = errors.New("провайдер контента недоступен")

// ErrDeliveryFailed возвращается при отказе транспорта для одного получателя.
var ErrDeliveryFailed = errors.New("доставка письма не удалась")
