package aipsdk_test

import (
	"context"
	"fmt"
	"time"

	"github.com/aussiebroadwan/aipface/pkg/aipsdk"
)

func ExampleClient_IdentifyUser() {
	client := aipsdk.New("app-id", "api-key", "secret-key", aipsdk.WithTimeout(10*time.Second))
	defer client.Close()

	res := client.IdentifyUser(context.Background(), "group3", "<base64 image>", aipsdk.Options{
		"user_top_num": "1",
	})
	if msg, failed := res.Err(); failed {
		fmt.Println("identify failed:", msg)
		return
	}
	fmt.Println(res["result"])
}
