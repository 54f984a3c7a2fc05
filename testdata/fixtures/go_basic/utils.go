package main

func validate(input string) bool {
	return len(input) > 0
}

func main() {
	result := HandleRequest("hello")
	println(result)
}
