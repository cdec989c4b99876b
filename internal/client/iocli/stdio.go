package iocli

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"golang.org/x/term"
)

// Stdio читает из in и пишет в out. Пароль читается без эха,
// если in - терминал; иначе как обычная строка (пайпы, тесты).
type Stdio struct {
	in     io.Reader
	out    io.Writer
	reader *bufio.Reader
}

// NewStdio возвращает IO поверх os.Stdin/os.Stdout
func NewStdio() IO {
	return New(os.Stdin, os.Stdout)
}

// New создает IO с заданными потоками
func New(in io.Reader, out io.Writer) *Stdio {
	return &Stdio{
		in:  in,
		out: out,
		// один reader на все чтения, чтобы не терять буферизованный ввод
		reader: bufio.NewReader(in),
	}
}

func (s *Stdio) Println(a ...any) {
	_, _ = fmt.Fprintln(s.out, a...)
}

func (s *Stdio) Printf(format string, a ...any) {
	_, _ = fmt.Fprintf(s.out, format, a...)
}

func (s *Stdio) Write(p []byte) (int, error) {
	return s.out.Write(p)
}

func (s *Stdio) ReadInput(prompt string) (string, error) {
	s.Printf("%s", prompt)
	return s.readLine()
}

func (s *Stdio) ReadPassword(prompt string) (string, error) {
	s.Printf("%s", prompt)

	if f, ok := s.in.(*os.File); ok && term.IsTerminal(int(f.Fd())) {
		pwBytes, err := term.ReadPassword(int(f.Fd()))
		s.Println("")
		if err != nil {
			return "", err
		}
		return string(pwBytes), nil
	}

	return s.readLine()
}

func (s *Stdio) readLine() (string, error) {
	input, err := s.reader.ReadString('\n')
	if err != nil {
		// последняя строка без перевода строки тоже считается вводом
		if errors.Is(err, io.EOF) && input != "" {
			return strings.TrimSpace(input), nil
		}
		return "", err
	}
	return strings.TrimSpace(input), nil
}
