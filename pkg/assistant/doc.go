// Package assistant is the view layer of the voice assistant. It keeps the
// recording flag, the grounding files and the current selection, and reacts
// to realtime events by driving the audio player and reporting transcripts.
//
// An Assistant is both the realtime.Handler and the realtime.Lifecycle of a
// session controller:
//
//	a := assistant.New(recorder, player, assistant.WithHistory(client))
//	ctrl := realtime.NewController(a, realtime.WithLifecycle(a))
//	a.Attach(ctrl)
//	sock := realtime.NewSocket(url, ctrl)
//	ctrl.Attach(sock)
//	go sock.Run(ctx)
//
//	a.Toggle(ctx) // start talking
//	a.Toggle(ctx) // stop
package assistant
