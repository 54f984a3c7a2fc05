package main

func HandleRequest(input string) string {
	if !validate(input) {
		return "invalid"
	}
	return processData(input)
}

func processData(data string) string {
	return data
}

func deadFunction(unused int) string {
	return "never called"
}
