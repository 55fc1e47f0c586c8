package internal

const (
	APP_NAME    = "mcpchat"
	APP_VERSION = "1.0.0"

	DEFAULT_CONFIG_PATH = "./data/config.toml"
	DEFAULT_DATA_DIR    = "./data"
	DEFAULT_LOGS_DIR    = "./logs"

	DEFAULT_BASE_URL           = "https://api.together.xyz/v1"
	DEFAULT_PRIMARY_MODEL      = "meta-llama/Llama-4-Maverick-17B-128E-Instruct-FP8"
	DEFAULT_WRAPUP_MODEL       = "meta-llama/Llama-3.3-70B-Instruct-Turbo-Free"
	DEFAULT_PRIMARY_MAX_TOKENS = 5000
	DEFAULT_WRAPUP_MAX_TOKENS  = 2000

	DEFAULT_SYSTEM_PROMPT = "You are a helpful assistant and can use tools when needed."
	DEFAULT_IMAGE_PROMPT  = "Describe this image."
	TOOLS_HELP_QUERY      = "Can you list the tools I can use?"

	DEFAULT_REQUEST_TIMEOUT = 120
	DEFAULT_CONNECT_TIMEOUT = 30
	DEFAULT_POLL_INTERVAL   = 100
	DEFAULT_PUMP_BATCH      = 16
	DEFAULT_SHUTDOWN_GRACE  = 10

	DEFAULT_PYTHON_COMMAND = "python"
	DEFAULT_NODE_COMMAND   = "node"

	EMPTY_RESPONSE = "[empty response]"
	RESET_MESSAGE  = "Conversation history cleared."
)
