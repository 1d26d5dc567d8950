package session

import "time"

// Подменяется в тестах
var nowFunc = time.Now
