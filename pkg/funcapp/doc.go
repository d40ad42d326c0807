// Package funcapp is a client for the function-style HTTP service that keeps
// chat history and schedules for the voice assistant.
//
// Every endpoint has its own URL. The service authenticates requests with a
// master key sent as the "code" query parameter.
//
// Example:
//
//	client, err := funcapp.NewClient(funcapp.Config{
//	    MasterKey: os.Getenv("FUNCAPP_MASTER_KEY"),
//	    BaseURL:   "https://dream.azurewebsites.net",
//	})
//	if err != nil {
//	    return err
//	}
//	err = client.SaveChatHistory(ctx, "내일 병원 가야 해", "네, 기억할게요.")
package funcapp
