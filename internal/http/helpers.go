package http

import "github.com/shahpalash10/chore-Mate/internal/constants"

func category(name string) constants.Category {
	if name == "" {
		return constants.CategoryGeneral
	}
	return constants.Category(name)
}
