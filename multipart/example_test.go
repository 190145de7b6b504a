package multipart_test

import (
	"fmt"
	"io"
	"log"
	"strings"

	"github.com/piotrkot/takes"
	"github.com/piotrkot/takes/multipart"
)

func Example_minimal() {
	// A multipart/form-data request as it arrives off the wire.
	body := strings.Join([]string{
		"--zzz",
		`Content-Disposition: form-data; name="greeting"`,
		"",
		"Hello World!",
		"--zzz",
		`Content-Disposition: form-data; name="greeting"`,
		"",
		"Hi again!",
		"--zzz--",
	}, "\r\n")
	req := takes.NewReq(
		strings.NewReader(body),
		"Content-Type", "multipart/form-data; boundary=zzz",
	)

	form, err := multipart.Parse(req, multipart.Options{})
	if err != nil {
		log.Fatal(err)
	}
	defer form.Close()

	for _, part := range multipart.NewSmart(form).Part("greeting") {
		data, err := io.ReadAll(part.Body())
		if err != nil {
			log.Fatal(err)
		}
		fmt.Printf("%q (%d bytes)\n", data, len(data))
	}

	// Output:
	// "Hello World!" (12 bytes)
	// "Hi again!" (9 bytes)
}

func ExampleSmart_Single() {
	req, err := multipart.NewFake("demo",
		multipart.FieldPart("token", "s3cr3t"),
	)
	if err != nil {
		log.Fatal(err)
	}
	form, err := multipart.Parse(req, multipart.Options{})
	if err != nil {
		log.Fatal(err)
	}
	defer form.Close()

	part, err := multipart.NewSmart(form).Single("token")
	if err != nil {
		log.Fatal(err)
	}
	value, err := io.ReadAll(part.Body())
	if err != nil {
		log.Fatal(err)
	}
	fmt.Println(string(value))

	// Output:
	// s3cr3t
}
