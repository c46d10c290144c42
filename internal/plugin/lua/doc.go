// Package lua runs user hook scripts that adjust AI suggestions.
//
// A hook script is a Lua file that may define two global functions:
//
//	function transform(text, kind, language)
//	    -- return the text to stage instead of text
//	    return text
//	end
//
//	function on_accept(id, kind, content)
//	    -- called after a suggestion was accepted
//	end
//
// Scripts run in a sandboxed state with only the base, table, string and
// math libraries. Each call runs under a deadline. The global table
// "codemate" exposes clean(text) and log(msg).
package lua
