package infrastructure

// StartServer boots the HTTP surface. Blocks until the listener exits.
func StartServer() {
	var server serverInterface = &ginServer{}
	server.Start()
}
