package service

import "github.com/sprintjam/sprintjam/internal/repository"

type Services struct {
	Room *RoomService
}

func NewServices(repos *repository.Repositories) *Services {
	return &Services{
		Room: NewRoomService(repos.Room),
	}
}
