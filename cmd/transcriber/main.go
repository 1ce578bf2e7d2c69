package main

import (
	"audio-transcriber/cmd/transcriber/cmd"

	// Import providers to register them
	_ "audio-transcriber/internal/app/api/elevenlabs"
	_ "audio-transcriber/internal/app/api/faster_whisper"
	_ "audio-transcriber/internal/app/api/gemini"
	_ "audio-transcriber/internal/app/api/openai/whisper"
	_ "audio-transcriber/internal/app/api/whisper_cpp"
	_ "audio-transcriber/internal/app/api/whisper_server"
)

func main() {
	cmd.Execute()
}
