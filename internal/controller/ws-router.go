package controller

import (
	"github.com/sharetube/watchparty/internal/protocol"
	"github.com/sharetube/watchparty/pkg/wsrouter"
)

func (c controller) getWSRouter() *wsrouter.WSRouter {
	mux := wsrouter.New()
	mux.Use(c.wsRequestIdWSMw(), c.loggerWSMw(), c.serializeWSMw())
	mux.OnError(c.handleWSError)

	// room
	wsrouter.Handle(mux, protocol.TypeCreateRoom, c.handleCreateRoom)
	wsrouter.Handle(mux, protocol.TypeJoinRoom, c.handleJoinRoom)
	wsrouter.Handle(mux, protocol.TypeChat, c.handleChat)

	// player
	wsrouter.Handle(mux, protocol.TypeSelectMovie, c.handleSelectMovie)
	wsrouter.Handle(mux, protocol.TypePlay, c.handlePlay)
	wsrouter.Handle(mux, protocol.TypePause, c.handlePause)
	wsrouter.Handle(mux, protocol.TypeSeek, c.handleSeek)

	// sync
	wsrouter.Handle(mux, protocol.TypeSyncRequest, c.handleSyncRequest)
	wsrouter.Handle(mux, protocol.TypeSyncState, c.handleSyncState)

	return mux
}
