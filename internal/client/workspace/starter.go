package workspace

var starters = map[string]string{
	"python": `import sys
data = sys.stdin.read().strip()
print(data)
`,
	"cpp": `#include <bits/stdc++.h>
using namespace std;
int main() {
  ios::sync_with_stdio(false); cin.tie(nullptr);
  string s, all; while (getline(cin, s)) { all += s; all += '\n'; }
  cout << all;
  return 0;
}
`,
	"java": `import java.io.*;
public class Main {
  public static void main(String[] args) throws Exception {
    BufferedReader br = new BufferedReader(new InputStreamReader(System.in));
    StringBuilder sb = new StringBuilder(); String ln;
    while ((ln = br.readLine()) != null) sb.append(ln).append('\n');
    System.out.print(sb.toString());
  }
}
`,
}

// Starter returns the echo-stdin template for lang, or "" when there is none.
func Starter(lang string) string {
	return starters[lang]
}
